package types

// Book is one row of the Library sheet.
type Book struct {
	BookID             string  `json:"book_id" sheet:"required"`
	Title              string  `json:"title" sheet:"required"`
	Author             string  `json:"author" sheet:"required"`
	Genre              string  `json:"genre" sheet:"required"`
	Publisher          string  `json:"publisher" sheet:"required"`
	EditionYear        string  `json:"edition_year" sheet:"required"`
	ISBN               string  `json:"isbn,omitempty"`
	ShelfLocation      string  `json:"shelf_location" sheet:"required"`
	AvailabilityStatus string  `json:"availability_status"`
	IssuedTo           string  `json:"issued_to,omitempty"`
	IssueDate          *Date   `json:"issue_date,omitempty"`
	ReturnDate         *Date   `json:"return_date,omitempty"`
	FineRate           float64 `json:"fine_rate"`
	FineAccrued        float64 `json:"fine_accrued"`
}
