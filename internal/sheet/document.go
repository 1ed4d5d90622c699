package sheet

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is the sparse JSON object built from one row.
type Document map[string]any

// IsEmpty reports whether a cell holds nothing: an absent value or the empty
// string the sheet uses for blank cells. Zero, false and whitespace are values.
func IsEmpty(cell any) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}

// CellText renders a cell the way it is shown in the sheet. Numbers decoded
// as json.Number keep their literal digits.
func CellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// MapRow builds the document for one row. Columns with an empty cell are left
// out; duplicate keys keep the last non-empty value.
func MapRow(header Header, row []any) Document {
	doc := make(Document, len(header))
	for i, key := range header {
		if i >= len(row) || IsEmpty(row[i]) {
			continue
		}
		doc[key] = row[i]
	}
	return doc
}
