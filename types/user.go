package types

// User represents an account in the system, keyed by Google email.
// It is the only state kept locally; all ERP record data lives in the
// user's spreadsheet.
type User struct {
	// Email is the unique, immutable identity of the account.
	Email string `json:"email" db:"email"`

	// Name is the display name reported by Google at login.
	Name string `json:"name" db:"name"`

	// EncryptedRefreshToken is the user's Google refresh token,
	// encrypted by the credential vault. It is never exposed in API
	// responses or logs.
	EncryptedRefreshToken string `json:"-" db:"encrypted_refresh_token"`

	// SpreadsheetID identifies the user's ERP spreadsheet. It is empty
	// until /api/setup-sheet provisions one, and immutable afterwards.
	SpreadsheetID string `json:"spreadsheet_id,omitempty" db:"spreadsheet_id"`
}
