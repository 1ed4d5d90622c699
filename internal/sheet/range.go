package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidRange = errors.New("invalid range")

// Sheet limits: columns stop at ZZZ, rows at ten million.
const (
	MaxColumns = 18278
	MaxRows    = 10_000_000
)

// Range is a zero-based, inclusive cell rectangle. LastRow is -1 when the
// range runs to the end of the sheet (for example "B2:B").
type Range struct {
	FirstCol, FirstRow int
	LastCol, LastRow   int
}

// ParseRange parses A1 notation: "A1", "A1:C10", "Sheet1!$A$1:$C$10", "B2:B"
// or "A:C".
func ParseRange(a1 string) (Range, error) {
	ref := strings.TrimSpace(a1)
	if i := strings.LastIndexByte(ref, '!'); i >= 0 {
		ref = ref[i+1:]
	}
	ref = strings.ToUpper(strings.ReplaceAll(ref, "$", ""))
	if ref == "" {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, a1)
	}

	start, end, isSpan := strings.Cut(ref, ":")
	if !isSpan {
		end = start
	}
	firstCol, firstRow, err := parseCell(start)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, a1)
	}
	lastCol, lastRow, err := parseCell(end)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, a1)
	}
	if !isSpan && firstRow < 0 {
		return Range{}, fmt.Errorf("%w: %q needs a row number", ErrInvalidRange, a1)
	}

	if firstRow < 0 {
		firstRow = 0
	}
	if firstCol > lastCol {
		firstCol, lastCol = lastCol, firstCol
	}
	if lastRow >= 0 && firstRow > lastRow {
		firstRow, lastRow = lastRow, firstRow
	}
	return Range{FirstCol: firstCol, FirstRow: firstRow, LastCol: lastCol, LastRow: lastRow}, nil
}

// parseCell returns the zero-based column and row of a reference. row is -1
// when the reference names a whole column.
func parseCell(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A'+1)
		if col > MaxColumns {
			return 0, 0, errors.New("column out of range")
		}
		i++
	}
	if i == 0 {
		return 0, 0, errors.New("missing column")
	}
	if i == len(ref) {
		return col - 1, -1, nil
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 || n > MaxRows {
		return 0, 0, errors.New("bad row")
	}
	return col - 1, n - 1, nil
}

// Columns returns the number of columns the range spans.
func (r Range) Columns() int {
	return r.LastCol - r.FirstCol + 1
}
