// Package bulk encodes bulk actions as newline-delimited JSON and groups them
// into payloads.
package bulk

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/minhtt159/sheet-ingest/internal/sheet"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultRetryOnConflict is used for every update built from a row with an id.
const DefaultRetryOnConflict = 3

// Action is one bulk instruction paired with its document.
type Action interface {
	// Lines returns the metadata line and the body line, without newlines.
	Lines() (meta, body []byte, err error)
}

// Index asks the cluster to store Doc under an id it assigns itself. Sending
// the same row twice stores it twice. Action metadata carries no _type, which
// 8.x clusters reject.
type Index struct {
	Index string
	Doc   sheet.Document
}

// Update upserts Doc under ID, so resending the same row is safe.
type Update struct {
	Index           string
	ID              string
	RetryOnConflict int
	Doc             sheet.Document
}

type indexMeta struct {
	Index string `json:"_index"`
}

type updateMeta struct {
	Index           string `json:"_index"`
	ID              string `json:"_id"`
	RetryOnConflict int    `json:"retry_on_conflict"`
}

type upsertBody struct {
	Doc         sheet.Document `json:"doc"`
	DetectNoop  bool           `json:"detect_noop"`
	DocAsUpsert bool           `json:"doc_as_upsert"`
}

func (a Index) Lines() ([]byte, []byte, error) {
	meta, err := json.Marshal(map[string]indexMeta{"index": {Index: a.Index}})
	if err != nil {
		return nil, nil, err
	}
	body, err := json.Marshal(a.Doc)
	if err != nil {
		return nil, nil, err
	}
	return meta, body, nil
}

func (a Update) Lines() ([]byte, []byte, error) {
	meta, err := json.Marshal(map[string]updateMeta{"update": {
		Index:           a.Index,
		ID:              a.ID,
		RetryOnConflict: a.RetryOnConflict,
	}})
	if err != nil {
		return nil, nil, err
	}
	body, err := json.Marshal(upsertBody{Doc: a.Doc, DetectNoop: true, DocAsUpsert: true})
	if err != nil {
		return nil, nil, err
	}
	return meta, body, nil
}

// NewAction builds an Update when id is set and an Index otherwise.
func NewAction(index, id string, doc sheet.Document) Action {
	if id == "" {
		return Index{Index: index, Doc: doc}
	}
	return Update{Index: index, ID: id, RetryOnConflict: DefaultRetryOnConflict, Doc: doc}
}
