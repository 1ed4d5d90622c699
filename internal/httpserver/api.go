package httpserver

import (
	"github.com/minhtt159/sheet-ingest/internal/indexer"
	"github.com/minhtt159/sheet-ingest/internal/ingest"
	"github.com/minhtt159/sheet-ingest/internal/settings"
)

type connectionBody struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	UseSSL   bool   `json:"use_ssl"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (b connectionBody) connection() indexer.Connection {
	return indexer.Connection{
		Host:     b.Host,
		Port:     b.Port,
		UseSSL:   b.UseSSL,
		Username: b.Username,
		Password: b.Password,
	}
}

type settingsBody struct {
	connectionBody
	WasChecked bool `json:"was_checked"`
}

func newSettingsBody(st settings.Settings) settingsBody {
	c := st.Connection
	return settingsBody{
		connectionBody: connectionBody{
			Host:     c.Host,
			Port:     c.Port,
			UseSSL:   c.UseSSL,
			Username: c.Username,
			Password: c.Password,
		},
		WasChecked: st.WasChecked,
	}
}

type pushBody struct {
	Index    string  `json:"index"`
	Type     string  `json:"type"`
	Template string  `json:"template"`
	Header   []any   `json:"header"`
	Rows     [][]any `json:"rows"`
	IDs      []any   `json:"ids"`
}

func (b pushBody) request() ingest.Request {
	return ingest.Request{
		Index:    b.Index,
		Type:     b.Type,
		Template: b.Template,
		Header:   b.Header,
		Rows:     b.Rows,
		IDs:      b.IDs,
	}
}

type resultBody struct {
	IngestID  string `json:"ingest_id"`
	SearchURL string `json:"search_url"`
	Documents int    `json:"documents"`
	Skipped   int    `json:"skipped"`
	Batches   int    `json:"batches"`
	Rejected  int    `json:"rejected"`
}

func newResultBody(r *ingest.Result) resultBody {
	return resultBody{
		IngestID:  r.IngestID,
		SearchURL: r.SearchURL,
		Documents: r.Documents,
		Skipped:   r.Skipped,
		Batches:   r.Batches,
		Rejected:  r.Rejected,
	}
}

type errorBody struct {
	Error string `json:"error"`
	Row   int    `json:"row,omitempty"`
}
