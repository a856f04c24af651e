package types

// FeeReceipt is one row of the Fees sheet.
type FeeReceipt struct {
	ReceiptID     string  `json:"receipt_id" sheet:"required"`
	StudentID     string  `json:"student_id" sheet:"required"`
	StudentName   string  `json:"student_name" sheet:"required"`
	Course        string  `json:"course" sheet:"required"`
	SemesterYear  string  `json:"semester_year" sheet:"required"`
	FeeType       string  `json:"fee_type" sheet:"required"`
	Amount        float64 `json:"amount"`
	PaymentMode   string  `json:"payment_mode" sheet:"required"`
	TransactionID string  `json:"transaction_id,omitempty"`
	PaymentDate   Date    `json:"payment_date" sheet:"required"`
	Status        string  `json:"status" sheet:"required"`
	Remarks       string  `json:"remarks,omitempty"`
}
