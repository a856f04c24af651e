package records

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/schoolerp/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmail = "owner@example.com"

func provisionedSpreadsheetID() string {
	return "fake-spreadsheet-" + strings.Repeat("0", 27)
}

func newTestResolver(rowStore *fakeRowStore) *Resolver {
	users := &fakeUsers{users: map[string]types.User{
		testEmail: {
			Email:                 testEmail,
			Name:                  "Owner",
			EncryptedRefreshToken: "enc:refresh-token",
			SpreadsheetID:         provisionedSpreadsheetID(),
		},
	}}
	return NewResolver(users, &fakeCipher{}, &fakeProvider{store: rowStore})
}

func newAdmission() types.Admission {
	return types.Admission{
		StudentName:           "Priya Sharma",
		DateOfBirth:           types.Date{},
		Gender:                "F",
		ContactNumber:         "9876543210",
		Email:                 "priya@example.com",
		Address:               "12 Lake Road",
		CourseApplied:         "B.Sc Physics",
		Department:            "Science",
		AdmissionStatus:       "Pending",
		ParentGuardianName:    "R. Sharma",
		ParentGuardianContact: "9876500000",
		Nationality:           "Indian",
		Category:              "General",
	}
}

func validAdmission(t *testing.T) types.Admission {
	t.Helper()
	a := newAdmission()
	d, err := types.ParseDate("2005-03-14")
	require.NoError(t, err)
	a.DateOfBirth = d
	return a
}

func TestCreateGeneratesIDAndDefaults(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))

	created, err := eng.Create(context.Background(), testEmail, validAdmission(t))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ADM-[0-9A-F]{6}$`), created.AdmissionID)
	assert.Equal(t, types.Today(), created.AdmissionDate)
	require.Len(t, rowStore.rows["Admissions"], 1)
	assert.Equal(t, created.AdmissionID, rowStore.rows["Admissions"][0][0])
}

func TestCreateKeepsClientSuppliedID(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))

	record := validAdmission(t)
	record.AdmissionID = "ADM-FFFFFF"

	created, err := eng.Create(context.Background(), testEmail, record)
	require.NoError(t, err)
	assert.Equal(t, "ADM-FFFFFF", created.AdmissionID)
}

func TestCreateIDsDoNotRepeat(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Fees, newTestResolver(rowStore))

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		created, err := eng.Create(context.Background(), testEmail, types.FeeReceipt{
			StudentID:    "STU-1",
			StudentName:  "Priya Sharma",
			Course:       "B.Sc Physics",
			SemesterYear: "2026/1",
			FeeType:      "Tuition",
			Amount:       1500,
			PaymentMode:  "Cash",
			Status:       "Paid",
		})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^RCPT-[0-9A-F]{8}$`), created.ReceiptID)
		assert.False(t, seen[created.ReceiptID], "duplicate id %s", created.ReceiptID)
		seen[created.ReceiptID] = true
	}
}

func TestCreateRejectsMissingRequiredField(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))

	record := validAdmission(t)
	record.StudentName = ""

	_, err := eng.Create(context.Background(), testEmail, record)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "student_name", valErr.Field)
	assert.Empty(t, rowStore.rows["Admissions"], "no row may be appended on validation failure")
}

func TestListReturnsCreatedRecords(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	created, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)

	listed, err := eng.List(ctx, testEmail)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])
}

func TestListPropagatesMappingError(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	_, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)
	// Corrupt the date cell of the stored row.
	rowStore.rows["Admissions"][0][2] = "garbage"

	_, err = eng.List(ctx, testEmail)
	var mapErr *MappingError
	assert.ErrorAs(t, err, &mapErr)
}

func TestUpdateEmptyPatchChangesNothing(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	created, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)

	updated, err := eng.Update(ctx, testEmail, created.AdmissionID, map[string]json.RawMessage{})
	require.NoError(t, err)
	assert.Equal(t, created, updated)

	listed, err := eng.List(ctx, testEmail)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])
}

func TestUpdateSingleFieldPatch(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	created, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)

	patch := map[string]json.RawMessage{"admission_status": json.RawMessage(`"Confirmed"`)}
	updated, err := eng.Update(ctx, testEmail, created.AdmissionID, patch)
	require.NoError(t, err)

	assert.Equal(t, "Confirmed", updated.AdmissionStatus)
	expected := created
	expected.AdmissionStatus = "Confirmed"
	assert.Equal(t, expected, updated, "only the patched field may change")
}

func TestUpdateCannotPatchID(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	created, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)

	patch := map[string]json.RawMessage{"admission_id": json.RawMessage(`"ADM-000000"`)}
	updated, err := eng.Update(ctx, testEmail, created.AdmissionID, patch)
	require.NoError(t, err)
	assert.Equal(t, created.AdmissionID, updated.AdmissionID)
}

func TestUpdateCannotBlankRequiredField(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	created, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)

	patch := map[string]json.RawMessage{"student_name": json.RawMessage(`""`)}
	_, err = eng.Update(ctx, testEmail, created.AdmissionID, patch)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "student_name", valErr.Field)

	// The rejected patch must not reach the sheet; the collection stays
	// listable with the record intact.
	listed, err := eng.List(ctx, testEmail)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.StudentName, listed[0].StudentName)
}

func TestUpdateNotFound(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))

	_, err := eng.Update(context.Background(), testEmail, "ADM-MISSING", map[string]json.RawMessage{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesRow(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	created, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)

	require.NoError(t, eng.Delete(ctx, testEmail, created.AdmissionID))
	listed, err := eng.List(ctx, testEmail)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDeleteNotFoundLeavesSheetUntouched(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Admissions, newTestResolver(rowStore))
	ctx := context.Background()

	_, err := eng.Create(ctx, testEmail, validAdmission(t))
	require.NoError(t, err)

	err = eng.Delete(ctx, testEmail, "ADM-MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, rowStore.rows["Admissions"], 1)
}

func TestOperationsRequireProvisionedSpreadsheet(t *testing.T) {
	rowStore := newFakeRowStore()
	users := &fakeUsers{users: map[string]types.User{
		testEmail: {Email: testEmail, EncryptedRefreshToken: "enc:tok"},
		"short@example.com": {
			Email:                 "short@example.com",
			EncryptedRefreshToken: "enc:tok",
			SpreadsheetID:         "too-short",
		},
	}}
	res := NewResolver(users, &fakeCipher{}, &fakeProvider{store: rowStore})
	eng := NewEngine(Admissions, res)

	_, err := eng.List(context.Background(), testEmail)
	assert.ErrorIs(t, err, ErrNotProvisioned)

	_, err = eng.List(context.Background(), "short@example.com")
	assert.ErrorIs(t, err, ErrNotProvisioned, "a corrupt short id is treated as unprovisioned")
}

func TestDecryptFailureSurfaces(t *testing.T) {
	rowStore := newFakeRowStore()
	users := &fakeUsers{users: map[string]types.User{
		testEmail: {
			Email:                 testEmail,
			EncryptedRefreshToken: "enc:tok",
			SpreadsheetID:         provisionedSpreadsheetID(),
		},
	}}
	decryptErr := errors.New("vault: decrypt failed")
	res := NewResolver(users, &fakeCipher{err: decryptErr}, &fakeProvider{store: rowStore})
	eng := NewEngine(Admissions, res)

	_, err := eng.List(context.Background(), testEmail)
	assert.ErrorIs(t, err, decryptErr)
}

// Two serialized updates with disjoint patches compose; when the same
// sequence interleaves over the real backend the last writer's whole
// row wins. That race is a property of the sheet backend and is
// documented rather than prevented.
func TestDisjointPatchesComposeWhenSerialized(t *testing.T) {
	rowStore := newFakeRowStore()
	eng := NewEngine(Fees, newTestResolver(rowStore))
	ctx := context.Background()

	created, err := eng.Create(ctx, testEmail, types.FeeReceipt{
		StudentID:    "STU-1",
		StudentName:  "Priya Sharma",
		Course:       "B.Sc Physics",
		SemesterYear: "2026/1",
		FeeType:      "Tuition",
		Amount:       1500,
		PaymentMode:  "Cash",
		Status:       "Pending",
	})
	require.NoError(t, err)

	_, err = eng.Update(ctx, testEmail, created.ReceiptID,
		map[string]json.RawMessage{"status": json.RawMessage(`"Paid"`)})
	require.NoError(t, err)
	final, err := eng.Update(ctx, testEmail, created.ReceiptID,
		map[string]json.RawMessage{"transaction_id": json.RawMessage(`"TXN-9"`)})
	require.NoError(t, err)

	assert.Equal(t, "Paid", final.Status)
	assert.Equal(t, "TXN-9", final.TransactionID)
}
