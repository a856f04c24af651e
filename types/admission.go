package types

// Admission is one row of the Admissions sheet. Field names follow the
// sheet's column headers; `sheet:"required"` marks columns a row cannot
// be read without.
type Admission struct {
	AdmissionID           string `json:"admission_id" sheet:"required"`
	StudentName           string `json:"student_name" sheet:"required"`
	DateOfBirth           Date   `json:"date_of_birth" sheet:"required"`
	Gender                string `json:"gender" sheet:"required"`
	ContactNumber         string `json:"contact_number" sheet:"required"`
	Email                 string `json:"email" sheet:"required"`
	Address               string `json:"address" sheet:"required"`
	CourseApplied         string `json:"course_applied" sheet:"required"`
	Department            string `json:"department" sheet:"required"`
	AdmissionDate         Date   `json:"admission_date" sheet:"required"`
	AdmissionStatus       string `json:"admission_status" sheet:"required"`
	ParentGuardianName    string `json:"parent_guardian_name" sheet:"required"`
	ParentGuardianContact string `json:"parent_guardian_contact" sheet:"required"`
	Nationality           string `json:"nationality" sheet:"required"`
	Category              string `json:"category" sheet:"required"`
	Remarks               string `json:"remarks,omitempty"`
}
