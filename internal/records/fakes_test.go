package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/schoolerp/apiserver/types"
)

// fakeRowStore is an in-memory stand-in for the Sheets adapter with the
// same find-by-value, position-based semantics.
type fakeRowStore struct {
	headers map[string][]string
	rows    map[string][][]string

	createCalls int
	log         *[]string
}

func (s *fakeRowStore) record(event string) {
	if s.log != nil {
		*s.log = append(*s.log, event)
	}
}

func newFakeRowStore() *fakeRowStore {
	s := &fakeRowStore{
		headers: make(map[string][]string),
		rows:    make(map[string][][]string),
	}
	for _, def := range SheetDefs() {
		s.headers[def.Title] = def.Headers
	}
	return s
}

func (s *fakeRowStore) CreateContainer(ctx context.Context, title string) (string, error) {
	s.createCalls++
	s.record("create-container")
	return "fake-spreadsheet-" + strings.Repeat("0", 20) + fmt.Sprint(s.createCalls), nil
}

func (s *fakeRowStore) InitSheets(ctx context.Context, spreadsheetID string, defs []SheetDef) error {
	s.record("init-sheets")
	for _, def := range defs {
		s.headers[def.Title] = def.Headers
		s.rows[def.Title] = nil
	}
	return nil
}

func (s *fakeRowStore) Append(ctx context.Context, spreadsheetID, sheet string, values []string) error {
	s.rows[sheet] = append(s.rows[sheet], values)
	return nil
}

func (s *fakeRowStore) Rows(ctx context.Context, spreadsheetID, sheet string) ([]map[string]string, error) {
	headers := s.headers[sheet]
	out := make([]map[string]string, 0, len(s.rows[sheet]))
	for _, row := range s.rows[sheet] {
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				m[h] = row[i]
			} else {
				m[h] = ""
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeRowStore) find(sheet, idHeader, idValue string) (int, error) {
	col := -1
	for i, h := range s.headers[sheet] {
		if h == idHeader {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, fmt.Errorf("column %q not found in sheet %q", idHeader, sheet)
	}
	for i, row := range s.rows[sheet] {
		if col < len(row) && row[col] == idValue {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", idHeader, idValue, ErrNotFound)
}

func (s *fakeRowStore) Overwrite(ctx context.Context, spreadsheetID, sheet, idHeader, idValue string, values []string) error {
	idx, err := s.find(sheet, idHeader, idValue)
	if err != nil {
		return err
	}
	s.rows[sheet][idx] = values
	return nil
}

func (s *fakeRowStore) Remove(ctx context.Context, spreadsheetID, sheet, idHeader, idValue string) error {
	idx, err := s.find(sheet, idHeader, idValue)
	if err != nil {
		return err
	}
	s.rows[sheet] = append(s.rows[sheet][:idx], s.rows[sheet][idx+1:]...)
	return nil
}

type fakeProvider struct {
	store *fakeRowStore
	err   error
}

func (p *fakeProvider) ForUser(ctx context.Context, refreshToken string) (RowStore, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.store, nil
}

type fakeUsers struct {
	users  map[string]types.User
	events *[]string
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := f.users[email]
	if !ok {
		return types.User{}, errors.New("user not found")
	}
	return user, nil
}

func (f *fakeUsers) SetSpreadsheetID(ctx context.Context, email, spreadsheetID string) error {
	user, ok := f.users[email]
	if !ok {
		return errors.New("user not found")
	}
	user.SpreadsheetID = spreadsheetID
	f.users[email] = user
	if f.events != nil {
		*f.events = append(*f.events, "set-spreadsheet-id")
	}
	return nil
}

type fakeCipher struct {
	err error
}

func (c *fakeCipher) Decrypt(ciphertext string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}
