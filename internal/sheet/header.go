// Package sheet turns resolved spreadsheet cells into search documents:
// header keys, sparse row documents and document ids.
package sheet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyHeader    = errors.New("header cell is empty")
	ErrColumnMismatch = errors.New("header and data column counts differ")
)

// Header holds one sanitized key per data column.
type Header []string

// SanitizeKey replaces every character outside [0-9A-Za-z] with '_' and
// lowercases the result.
func SanitizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SanitizeHeader converts a raw header row into document keys. A cell that is
// empty, or that keeps no letter or digit once sanitized, is an error.
func SanitizeHeader(cells []any) (Header, error) {
	header := make(Header, len(cells))
	for i, cell := range cells {
		if IsEmpty(cell) {
			return nil, fmt.Errorf("%w: column %d", ErrEmptyHeader, i+1)
		}
		key := SanitizeKey(CellText(cell))
		if !hasAlphanumeric(key) {
			return nil, fmt.Errorf("%w: column %d (%q has no letters or digits)", ErrEmptyHeader, i+1, CellText(cell))
		}
		header[i] = key
	}
	return header, nil
}

func hasAlphanumeric(key string) bool {
	return strings.IndexFunc(key, func(r rune) bool { return r != '_' }) >= 0
}

// CheckColumns verifies the header covers exactly the columns of the first
// data row.
func CheckColumns(header Header, firstRow []any) error {
	if len(header) != len(firstRow) {
		return fmt.Errorf("%w: %d header columns, %d data columns", ErrColumnMismatch, len(header), len(firstRow))
	}
	return nil
}
