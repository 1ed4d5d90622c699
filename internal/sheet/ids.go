package sheet

import "fmt"

// MissingDocumentIDError reports a data row without a document id. Row is
// 1-based.
type MissingDocumentIDError struct {
	Row int
}

func (e *MissingDocumentIDError) Error() string {
	return fmt.Sprintf("missing document id in row %d", e.Row)
}

// ResolveIDs returns one id per data row, failing on the first row whose id
// cell is empty or missing.
func ResolveIDs(cells []any, rows int) ([]string, error) {
	ids := make([]string, rows)
	for i := range rows {
		if i >= len(cells) || IsEmpty(cells[i]) {
			return nil, &MissingDocumentIDError{Row: i + 1}
		}
		ids[i] = CellText(cells[i])
	}
	return ids, nil
}

// Column returns the first cell of every row, as used for a doc-id range.
func Column(matrix [][]any) []any {
	col := make([]any, len(matrix))
	for i, row := range matrix {
		if len(row) > 0 {
			col[i] = row[0]
		}
	}
	return col
}
