package records

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolerp/apiserver/types"
)

// Kind describes one record kind: which sheet holds it, the fixed
// header row laid down at provisioning time, and how identifiers are
// generated for it. The header row is the authoritative field order and
// naming for the sheet.
type Kind[T any] struct {
	Sheet    string
	Headers  []string
	IDField  string
	IDPrefix string
	IDHexLen int

	// Defaults fills fields the client may omit on create, such as the
	// admission or payment date. It must only touch empty fields.
	Defaults func(*T)
}

// IDHeader returns the raw column header holding the identifier.
func (k Kind[T]) IDHeader() string {
	for _, h := range k.Headers {
		if NormalizeHeader(h) == k.IDField {
			return h
		}
	}
	return k.IDField
}

// NewID generates a kind-specific identifier such as ADM-4F2A1B. The
// hex tail carries enough entropy that collisions are negligible, which
// is the only uniqueness guarantee the sheet backend allows.
func (k Kind[T]) NewID() string {
	u := uuid.New()
	tail := strings.ToUpper(hex.EncodeToString(u[:]))[:k.IDHexLen]
	return k.IDPrefix + "-" + tail
}

// SheetDef is a sub-table declaration handed to the row store at
// provisioning time.
type SheetDef struct {
	Title   string
	Headers []string
}

// Admissions, Library, Hostel, Fees and AppUsers are the five record
// kinds managed by the ERP. Sheet names and header rows must not change
// once users have provisioned spreadsheets against them.
var (
	Admissions = Kind[types.Admission]{
		Sheet: "Admissions",
		Headers: []string{
			"Admission ID", "Student Name", "Date of Birth", "Gender", "Contact Number",
			"Email", "Address", "Course Applied", "Department", "Admission Date",
			"Admission Status", "Parent/Guardian Name", "Parent/Guardian Contact",
			"Nationality", "Category", "Remarks",
		},
		IDField:  "admission_id",
		IDPrefix: "ADM",
		IDHexLen: 6,
		Defaults: func(a *types.Admission) {
			if a.AdmissionDate.IsZero() {
				a.AdmissionDate = types.Today()
			}
		},
	}

	Library = Kind[types.Book]{
		Sheet: "Library",
		Headers: []string{
			"Book ID", "Title", "Author", "Genre", "Publisher", "Edition/Year", "ISBN",
			"Shelf Location", "Availability Status", "Issued To", "Issue Date",
			"Return Date", "Fine Rate", "Fine Accrued",
		},
		IDField:  "book_id",
		IDPrefix: "BK",
		IDHexLen: 8,
		Defaults: func(b *types.Book) {
			if b.AvailabilityStatus == "" {
				b.AvailabilityStatus = "Available"
			}
		},
	}

	Hostel = Kind[types.HostelOccupancy]{
		Sheet: "Hostel",
		Headers: []string{
			"Occupancy ID", "Hostel ID", "Room Type", "Fee Status", "Room Number",
			"Occupied Beds", "Vacant Beds", "Student ID", "Student Name",
			"Check IN Date", "Check Out Date", "Status",
		},
		IDField:  "occupancy_id",
		IDPrefix: "HOC",
		IDHexLen: 6,
	}

	Fees = Kind[types.FeeReceipt]{
		Sheet: "Fees",
		Headers: []string{
			"Receipt ID", "Student ID", "Student Name", "Course", "Semester/Year",
			"Fee Type", "Amount", "Payment Mode", "Transaction ID", "Payment Date",
			"Status", "Remarks",
		},
		IDField:  "receipt_id",
		IDPrefix: "RCPT",
		IDHexLen: 8,
		Defaults: func(f *types.FeeReceipt) {
			if f.PaymentDate.IsZero() {
				f.PaymentDate = types.Today()
			}
		},
	}

	AppUsers = Kind[types.AppUser]{
		Sheet:    "Users",
		Headers:  []string{"User ID", "Username", "Password", "Role"},
		IDField:  "user_id",
		IDPrefix: "USR",
		IDHexLen: 6,
	}
)

// SheetDefs lists every kind's sub-table in provisioning order.
func SheetDefs() []SheetDef {
	return []SheetDef{
		{Title: Admissions.Sheet, Headers: Admissions.Headers},
		{Title: Library.Sheet, Headers: Library.Headers},
		{Title: Hostel.Sheet, Headers: Hostel.Headers},
		{Title: Fees.Sheet, Headers: Fees.Headers},
		{Title: AppUsers.Sheet, Headers: AppUsers.Headers},
	}
}
