package records

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/schoolerp/apiserver/types"
)

// NormalizeHeader converts a human-readable column header to its field
// name: lowercase, with spaces and slashes replaced by underscores.
// "Parent/Guardian Name" becomes "parent_guardian_name".
func NormalizeHeader(header string) string {
	h := strings.ToLower(header)
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "/", "_")
	return h
}

type fieldInfo struct {
	name     string
	index    int
	required bool
}

var fieldCache sync.Map // reflect.Type -> []fieldInfo

func fieldsOf(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var infos []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		infos = append(infos, fieldInfo{
			name:     name,
			index:    i,
			required: f.Tag.Get("sheet") == "required",
		})
	}
	fieldCache.Store(t, infos)
	return infos
}

// ToRow serializes a record into cell values ordered by the given
// header row. Every field becomes its string form (dates ISO-8601,
// numbers in canonical decimal text); headers with no matching field
// produce an empty cell.
func ToRow(record any, headers []string) []string {
	v := reflect.ValueOf(record)
	byName := make(map[string]string, v.NumField())
	for _, f := range fieldsOf(v.Type()) {
		byName[f.name] = cellValue(v.Field(f.index))
	}

	row := make([]string, len(headers))
	for i, header := range headers {
		row[i] = byName[NormalizeHeader(header)]
	}
	return row
}

// FromRow converts a header-keyed row into a record of kind T. Observed
// headers are normalized before matching, so the sheet's display names
// never leak into field handling. A row that cannot satisfy the kind's
// required fields, or that holds an unparsable cell, yields a
// MappingError.
func FromRow[T any](row map[string]string, sheet string) (T, error) {
	var record T
	v := reflect.ValueOf(&record).Elem()

	cells := make(map[string]string, len(row))
	for header, value := range row {
		cells[NormalizeHeader(header)] = value
	}

	for _, f := range fieldsOf(v.Type()) {
		raw := strings.TrimSpace(cells[f.name])
		if raw == "" {
			if f.required {
				return record, &MappingError{Sheet: sheet, Field: f.name, Reason: "required value missing"}
			}
			continue
		}
		if err := setCell(v.Field(f.index), raw); err != nil {
			return record, &MappingError{Sheet: sheet, Field: f.name, Reason: err.Error()}
		}
	}
	return record, nil
}

func cellValue(v reflect.Value) string {
	switch value := v.Interface().(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case types.Date:
		return value.String()
	case *types.Date:
		if value == nil {
			return ""
		}
		return value.String()
	default:
		return ""
	}
}

func setCell(v reflect.Value, raw string) error {
	switch target := v.Addr().Interface().(type) {
	case *string:
		*target = raw
	case *int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*target = n
	case *float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*target = f
	case *types.Date:
		d, err := types.ParseDate(raw)
		if err != nil {
			return err
		}
		*target = d
	case **types.Date:
		d, err := types.ParseDate(raw)
		if err != nil {
			return err
		}
		*target = &d
	}
	return nil
}
