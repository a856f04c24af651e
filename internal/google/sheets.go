package google

import (
	"context"
	"fmt"

	"github.com/schoolerp/apiserver/internal/records"
	"google.golang.org/api/sheets/v4"
)

const (
	// readRange covers every column any record sheet uses.
	readRange = "A:Z"

	valueInputUserEntered = "USER_ENTERED"
)

// SheetsStore implements records.RowStore over one user's Google Sheets
// credential. Rows have no stable identity in this backend; every
// mutation locates its target by value first, and the position can be
// stale by the time it is used. See the records package doc.
type SheetsStore struct {
	svc *sheets.Service
}

func (s *SheetsStore) CreateContainer(ctx context.Context, title string) (string, error) {
	created, err := s.svc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return "", wrapAPIError("create spreadsheet", err)
	}
	return created.SpreadsheetId, nil
}

// InitSheets declares every record sheet and removes the default empty
// sheet the backend creates, then writes all header rows in one batch.
func (s *SheetsStore) InitSheets(ctx context.Context, spreadsheetID string, defs []records.SheetDef) error {
	requests := make([]*sheets.Request, 0, len(defs)+1)
	for _, def := range defs {
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: def.Title},
			},
		})
	}
	requests = append(requests, &sheets.Request{
		DeleteSheet: &sheets.DeleteSheetRequest{SheetId: 0},
	})

	_, err := s.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("add sheets", err)
	}

	data := make([]*sheets.ValueRange, 0, len(defs))
	for _, def := range defs {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("'%s'!A1", def.Title),
			Values: [][]any{toCells(def.Headers)},
		})
	}
	_, err = s.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputUserEntered,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("write header rows", err)
	}
	return nil
}

func (s *SheetsStore) Append(ctx context.Context, spreadsheetID, sheet string, values []string) error {
	_, err := s.svc.Spreadsheets.Values.Append(spreadsheetID, fmt.Sprintf("'%s'!A:A", sheet), &sheets.ValueRange{
		Values: [][]any{toCells(values)},
	}).ValueInputOption(valueInputUserEntered).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return wrapAPIError("append row", err)
	}
	return nil
}

// Rows returns every data row keyed by the sheet's header row. Rows
// shorter than the header are padded with empty cells. A sheet with no
// data rows yields an empty slice.
func (s *SheetsStore) Rows(ctx context.Context, spreadsheetID, sheet string) ([]map[string]string, error) {
	values, err := s.fetch(ctx, spreadsheetID, sheet)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, nil
	}

	headers := values[0]
	rows := make([]map[string]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				row[header] = raw[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *SheetsStore) Overwrite(ctx context.Context, spreadsheetID, sheet, idHeader, idValue string, values []string) error {
	rowIndex, err := s.findRow(ctx, spreadsheetID, sheet, idHeader, idValue)
	if err != nil {
		return err
	}
	_, err = s.svc.Spreadsheets.Values.Update(spreadsheetID, fmt.Sprintf("'%s'!A%d", sheet, rowIndex), &sheets.ValueRange{
		Values: [][]any{toCells(values)},
	}).ValueInputOption(valueInputUserEntered).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("update row", err)
	}
	return nil
}

func (s *SheetsStore) Remove(ctx context.Context, spreadsheetID, sheet, idHeader, idValue string) error {
	meta, err := s.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return wrapAPIError("fetch spreadsheet metadata", err)
	}
	var sheetID int64 = -1
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			sheetID = sh.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		return fmt.Errorf("sheet %q not found in spreadsheet", sheet)
	}

	rowIndex, err := s.findRow(ctx, spreadsheetID, sheet, idHeader, idValue)
	if err != nil {
		return err
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex - 1),
					EndIndex:   int64(rowIndex),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return wrapAPIError("delete row", err)
	}
	return nil
}

// findRow returns the 1-based position of the first row whose idHeader
// column equals idValue.
func (s *SheetsStore) findRow(ctx context.Context, spreadsheetID, sheet, idHeader, idValue string) (int, error) {
	values, err := s.fetch(ctx, spreadsheetID, sheet)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("sheet %q is empty: %w", sheet, records.ErrNotFound)
	}

	col := -1
	for i, header := range values[0] {
		if header == idHeader {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, fmt.Errorf("column %q not found in sheet %q", idHeader, sheet)
	}

	for i, row := range values {
		if col < len(row) && row[col] == idValue {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", idHeader, idValue, records.ErrNotFound)
}

func (s *SheetsStore) fetch(ctx context.Context, spreadsheetID, sheet string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, fmt.Sprintf("'%s'!%s", sheet, readRange)).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("fetch rows", err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
