package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestRepository(t *testing.T) *UserRepository {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(`
		CREATE TABLE users (
			email TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			encrypted_refresh_token TEXT NOT NULL,
			spreadsheet_id TEXT
		)`)
	require.NoError(t, err)
	return NewUserRepository(conn)
}

func TestUpsertAndGetByEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "alice@example.com", "Alice", "enc-1"))

	user, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "enc-1", user.EncryptedRefreshToken)
	assert.Empty(t, user.SpreadsheetID)
}

func TestUpsertRefreshesExistingUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "alice@example.com", "Alice", "enc-1"))
	require.NoError(t, repo.SetSpreadsheetID(ctx, "alice@example.com", "sheet-id-1"))
	require.NoError(t, repo.Upsert(ctx, "alice@example.com", "Alice Smith", "enc-2"))

	user, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", user.Name)
	assert.Equal(t, "enc-2", user.EncryptedRefreshToken)
	assert.Equal(t, "sheet-id-1", user.SpreadsheetID, "re-login must not clear the spreadsheet id")
}

func TestGetByEmailNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSpreadsheetIDUnknownUser(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.SetSpreadsheetID(context.Background(), "missing@example.com", "sheet-id")
	assert.ErrorIs(t, err, ErrNotFound)
}
