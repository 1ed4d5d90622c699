package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Grid is an in-memory sheet read from CSV.
type Grid struct {
	rows [][]string
}

// ReadCSV loads every record of r. Records may have different lengths.
func ReadCSV(r io.Reader) (*Grid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return &Grid{rows: records}, nil
}

// NewGrid wraps already loaded rows.
func NewGrid(rows [][]string) *Grid {
	return &Grid{rows: rows}
}

// Rows returns the number of rows in the sheet.
func (g *Grid) Rows() int {
	return len(g.rows)
}

// Values returns the cells covered by rng. Rows past the loaded data are cut
// off; missing cells within a row come back as the empty string, like blank
// cells of a spreadsheet.
func (g *Grid) Values(rng Range) [][]any {
	last := rng.LastRow
	if last < 0 || last >= len(g.rows) {
		last = len(g.rows) - 1
	}
	if last < rng.FirstRow {
		return nil
	}

	out := make([][]any, 0, last-rng.FirstRow+1)
	for r := rng.FirstRow; r <= last; r++ {
		row := make([]any, rng.Columns())
		for c := range row {
			row[c] = g.cell(r, rng.FirstCol+c)
		}
		out = append(out, row)
	}
	return out
}

func (g *Grid) cell(row, col int) string {
	if row >= len(g.rows) || col >= len(g.rows[row]) {
		return ""
	}
	return g.rows[row][col]
}

// Resolve parses an A1 range and returns its cells.
func (g *Grid) Resolve(a1 string) ([][]any, error) {
	rng, err := ParseRange(a1)
	if err != nil {
		return nil, err
	}
	return g.Values(rng), nil
}
