package records

import (
	"context"
	"fmt"
)

const containerTitlePrefix = "ERP Data - "

// SetupContainer provisions the user's spreadsheet. It is a no-op when
// the user already has one, which also makes it the retry path after a
// partial failure.
//
// The spreadsheet id is recorded against the user immediately after
// creation and before any header setup, so a crash mid-setup leaves a
// provisioned-but-incomplete spreadsheet rather than an orphaned one
// the user record knows nothing about.
func (r *Resolver) SetupContainer(ctx context.Context, email string) (spreadsheetID string, created bool, err error) {
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return "", false, fmt.Errorf("resolve user %s: %w", email, err)
	}
	if user.SpreadsheetID != "" {
		return user.SpreadsheetID, false, nil
	}

	refreshToken, err := r.cipher.Decrypt(user.EncryptedRefreshToken)
	if err != nil {
		return "", false, err
	}
	rowStore, err := r.provider.ForUser(ctx, refreshToken)
	if err != nil {
		return "", false, err
	}

	spreadsheetID, err = rowStore.CreateContainer(ctx, containerTitlePrefix+email)
	if err != nil {
		return "", false, err
	}
	if err := r.users.SetSpreadsheetID(ctx, email, spreadsheetID); err != nil {
		return "", false, err
	}
	if err := rowStore.InitSheets(ctx, spreadsheetID, SheetDefs()); err != nil {
		return "", false, err
	}
	return spreadsheetID, true, nil
}
