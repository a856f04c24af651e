// Package records implements the generic CRUD engine that maps typed
// records onto header-indexed rows in a per-user spreadsheet.
//
// Rows are identified by the value of their id column, not by any
// stable row key, because the sheet backend offers none. Every update
// and delete is a find-then-mutate sequence with no atomicity across
// the two steps: a concurrent delete can resurrect a row or redirect an
// overwrite. This is a property of the backend, accepted here and
// pinned by tests.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/schoolerp/apiserver/types"
)

// A spreadsheet id shorter than this is a corrupt provisioning record,
// not a real Google spreadsheet id.
const minSpreadsheetIDLen = 30

// RowStore is the remote tabular backend, scoped to one user's
// credential. Row positions are 1-based; find-by-value resolves
// ambiguity first-match-wins.
type RowStore interface {
	CreateContainer(ctx context.Context, title string) (string, error)
	InitSheets(ctx context.Context, spreadsheetID string, defs []SheetDef) error
	Append(ctx context.Context, spreadsheetID, sheet string, values []string) error
	Rows(ctx context.Context, spreadsheetID, sheet string) ([]map[string]string, error)
	Overwrite(ctx context.Context, spreadsheetID, sheet, idHeader, idValue string, values []string) error
	Remove(ctx context.Context, spreadsheetID, sheet, idHeader, idValue string) error
}

// StoreProvider opens a RowStore session from a decrypted refresh token.
type StoreProvider interface {
	ForUser(ctx context.Context, refreshToken string) (RowStore, error)
}

// UserDirectory is the local store of authenticated users.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	SetSpreadsheetID(ctx context.Context, email, spreadsheetID string) error
}

// Cipher decrypts the stored refresh token.
type Cipher interface {
	Decrypt(ciphertext string) (string, error)
}

// Resolver turns an acting user's email into an authorized row-store
// session plus the user's spreadsheet id. It is shared by every engine
// instance and by provisioning.
type Resolver struct {
	users    UserDirectory
	cipher   Cipher
	provider StoreProvider
}

func NewResolver(users UserDirectory, cipher Cipher, provider StoreProvider) *Resolver {
	return &Resolver{users: users, cipher: cipher, provider: provider}
}

func (r *Resolver) session(ctx context.Context, email string) (RowStore, string, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("resolve user %s: %w", email, err)
	}
	if len(user.SpreadsheetID) < minSpreadsheetIDLen {
		return nil, "", ErrNotProvisioned
	}
	refreshToken, err := r.cipher.Decrypt(user.EncryptedRefreshToken)
	if err != nil {
		return nil, "", err
	}
	rowStore, err := r.provider.ForUser(ctx, refreshToken)
	if err != nil {
		return nil, "", err
	}
	return rowStore, user.SpreadsheetID, nil
}

// Engine provides create/list/update/delete for one record kind. All
// five kinds share this implementation; only the Kind descriptor
// differs.
type Engine[T any] struct {
	kind Kind[T]
	res  *Resolver
}

func NewEngine[T any](kind Kind[T], res *Resolver) *Engine[T] {
	return &Engine[T]{kind: kind, res: res}
}

// Create validates the payload, generates an identifier when the client
// did not supply one, applies kind defaults, and appends the record as
// a new row. The stored record is returned in full.
func (e *Engine[T]) Create(ctx context.Context, email string, record T) (T, error) {
	var zero T

	if e.idOf(&record) == "" {
		e.setID(&record, e.kind.NewID())
	}
	if e.kind.Defaults != nil {
		e.kind.Defaults(&record)
	}
	if err := e.validate(&record); err != nil {
		return zero, err
	}

	rowStore, spreadsheetID, err := e.res.session(ctx, email)
	if err != nil {
		return zero, err
	}
	if err := rowStore.Append(ctx, spreadsheetID, e.kind.Sheet, ToRow(record, e.kind.Headers)); err != nil {
		return zero, err
	}
	return record, nil
}

// List fetches and maps every row of the kind's sheet. A row that fails
// mapping fails the whole listing; a silently partial listing would be
// misleading.
func (e *Engine[T]) List(ctx context.Context, email string) ([]T, error) {
	rowStore, spreadsheetID, err := e.res.session(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := rowStore.Rows(ctx, spreadsheetID, e.kind.Sheet)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		record, err := FromRow[T](row, e.kind.Sheet)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Update applies a partial patch to the record with the given id.
// Fields absent from the patch keep their stored values; the id field
// itself is never patchable. The merged record must still satisfy the
// create shape, so a patch cannot blank a required field and leave the
// sheet holding a row List would refuse to map. The merged record
// overwrites the row at the position where the id was found.
func (e *Engine[T]) Update(ctx context.Context, email, id string, patch map[string]json.RawMessage) (T, error) {
	var zero T

	rowStore, spreadsheetID, err := e.res.session(ctx, email)
	if err != nil {
		return zero, err
	}
	rows, err := rowStore.Rows(ctx, spreadsheetID, e.kind.Sheet)
	if err != nil {
		return zero, err
	}

	idHeader := e.kind.IDHeader()
	var existing map[string]string
	for _, row := range rows {
		if row[idHeader] == id {
			existing = row
			break
		}
	}
	if existing == nil {
		return zero, fmt.Errorf("%s %q: %w", idHeader, id, ErrNotFound)
	}

	record, err := FromRow[T](existing, e.kind.Sheet)
	if err != nil {
		return zero, err
	}
	if err := e.applyPatch(&record, patch); err != nil {
		return zero, err
	}
	if err := e.validate(&record); err != nil {
		return zero, err
	}

	if err := rowStore.Overwrite(ctx, spreadsheetID, e.kind.Sheet, idHeader, id, ToRow(record, e.kind.Headers)); err != nil {
		return zero, err
	}
	return record, nil
}

// Delete removes the row with the given id.
func (e *Engine[T]) Delete(ctx context.Context, email, id string) error {
	rowStore, spreadsheetID, err := e.res.session(ctx, email)
	if err != nil {
		return err
	}
	return rowStore.Remove(ctx, spreadsheetID, e.kind.Sheet, e.kind.IDHeader(), id)
}

// validate enforces the create shape. Required string and date fields
// must be set; numeric fields are exempt because JSON decoding cannot
// tell an absent number from zero.
func (e *Engine[T]) validate(record *T) error {
	v := reflect.ValueOf(record).Elem()
	for _, f := range fieldsOf(v.Type()) {
		if !f.required {
			continue
		}
		switch value := v.Field(f.index).Interface().(type) {
		case string:
			if value == "" {
				return &ValidationError{Field: f.name, Reason: "is required"}
			}
		case types.Date:
			if value.IsZero() {
				return &ValidationError{Field: f.name, Reason: "is required"}
			}
		}
	}
	return nil
}

// applyPatch copies only the fields present in the patch onto the
// record. Unknown keys are ignored, matching the lenient payload
// handling of the HTTP layer elsewhere.
func (e *Engine[T]) applyPatch(record *T, patch map[string]json.RawMessage) error {
	v := reflect.ValueOf(record).Elem()
	for _, f := range fieldsOf(v.Type()) {
		if f.name == e.kind.IDField {
			continue
		}
		raw, ok := patch[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, v.Field(f.index).Addr().Interface()); err != nil {
			return &ValidationError{Field: f.name, Reason: err.Error()}
		}
	}
	return nil
}

func (e *Engine[T]) idOf(record *T) string {
	v := reflect.ValueOf(record).Elem()
	for _, f := range fieldsOf(v.Type()) {
		if f.name == e.kind.IDField {
			return v.Field(f.index).String()
		}
	}
	return ""
}

func (e *Engine[T]) setID(record *T, id string) {
	v := reflect.ValueOf(record).Elem()
	for _, f := range fieldsOf(v.Type()) {
		if f.name == e.kind.IDField {
			v.Field(f.index).SetString(id)
			return
		}
	}
}
