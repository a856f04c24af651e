package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolerp/apiserver/types"
)

// UserRepository handles persistence for the local user directory.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT email, name, encrypted_refresh_token, spreadsheet_id
		FROM users
		WHERE email = ?`
	var (
		user          types.User
		spreadsheetID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email,
		&user.Name,
		&user.EncryptedRefreshToken,
		&spreadsheetID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.SpreadsheetID = spreadsheetID.String
	return user, nil
}

// Upsert creates a user or refreshes an existing user's name and
// encrypted refresh token. The spreadsheet id is left untouched; it is
// managed exclusively by SetSpreadsheetID.
func (r *UserRepository) Upsert(ctx context.Context, email, name, encryptedRefreshToken string) error {
	const query = `
		INSERT INTO users (email, name, encrypted_refresh_token)
		VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			encrypted_refresh_token = excluded.encrypted_refresh_token`
	_, err := r.db.ExecContext(ctx, query, email, name, encryptedRefreshToken)
	return err
}

// SetSpreadsheetID records the user's provisioned spreadsheet.
func (r *UserRepository) SetSpreadsheetID(ctx context.Context, email, spreadsheetID string) error {
	const query = `UPDATE users SET spreadsheet_id = ? WHERE email = ?`
	result, err := r.db.ExecContext(ctx, query, spreadsheetID, email)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
