package types

// AppUser is one row of the Users sheet: an ERP application login
// managed as record data by the sheet owner. Distinct from User, which
// is the locally stored Google account.
//
// The password column holds whatever the sheet owner writes to it; the
// sheet backend offers no way to keep it out of the document.
type AppUser struct {
	UserID   string `json:"user_id" sheet:"required"`
	Username string `json:"username" sheet:"required"`
	Password string `json:"password" sheet:"required"`
	Role     string `json:"role" sheet:"required"`
}
