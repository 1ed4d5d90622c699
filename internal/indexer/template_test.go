package indexer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        []byte
}

type templateCluster struct {
	mu       sync.Mutex
	requests []recordedRequest
	getCode  int
	getBody  string
	postCode int
	postBody string
}

func (c *templateCluster) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.requests = append(c.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        body,
	})
	c.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		w.WriteHeader(c.getCode)
		w.Write([]byte(c.getBody))
	default:
		w.WriteHeader(c.postCode)
		w.Write([]byte(c.postBody))
	}
}

func TestDefaultTemplate(t *testing.T) {
	tpl := DefaultTemplate("people")
	if tpl.Template != "people" {
		t.Fatalf("template pattern = %q, want literal index name", tpl.Template)
	}
	index := tpl.Settings["index"].(map[string]any)
	if index["number_of_shards"] != 1 || index["number_of_replicas"] != 1 || index["refresh_interval"] != "5s" {
		t.Fatalf("unexpected index settings: %+v", index)
	}

	other := DefaultTemplate("other")
	other.Settings["index"].(map[string]any)["refresh_interval"] = "1s"
	if DefaultTemplate("people").Settings["index"].(map[string]any)["refresh_interval"] != "5s" {
		t.Fatal("templates must not share state between calls")
	}
}

func TestEnsureTemplateCreatesMissingTemplate(t *testing.T) {
	cluster := &templateCluster{getCode: http.StatusNotFound, getBody: `{}`, postCode: http.StatusOK, postBody: `{"acknowledged":true}`}
	conn := fakeCluster(t, cluster.handle)

	if err := newTestClient(t, conn).EnsureTemplate(context.Background(), "people", "people_tpl"); err != nil {
		t.Fatalf("EnsureTemplate() error = %v", err)
	}

	if len(cluster.requests) != 2 {
		t.Fatalf("expected GET then POST, got %d requests", len(cluster.requests))
	}
	get, post := cluster.requests[0], cluster.requests[1]
	if get.method != http.MethodGet || get.path != "/_template/people_tpl" {
		t.Fatalf("unexpected lookup: %s %s", get.method, get.path)
	}
	if post.method != http.MethodPost || post.path != "/_template/people_tpl" {
		t.Fatalf("unexpected creation: %s %s", post.method, post.path)
	}
	if !strings.HasPrefix(post.contentType, "application/json") {
		t.Fatalf("unexpected content type %q", post.contentType)
	}

	var sent Template
	if err := json.Unmarshal(post.body, &sent); err != nil {
		t.Fatalf("decode template body: %v", err)
	}
	if sent.Template != "people" {
		t.Fatalf("template field = %q, want %q", sent.Template, "people")
	}
	if _, ok := sent.Mappings["_default_"]; ok {
		t.Fatalf("mappings must be typeless: %s", post.body)
	}
	dynamic, ok := sent.Mappings["dynamic_templates"].([]any)
	if !ok || len(dynamic) != 1 {
		t.Fatalf("dynamic_templates missing at the mappings root: %s", post.body)
	}
	stringFields, _ := dynamic[0].(map[string]any)["string_fields"].(map[string]any)
	mapping, _ := stringFields["mapping"].(map[string]any)
	raw, _ := mapping["fields"].(map[string]any)["raw"].(map[string]any)
	if mapping["type"] != "text" || raw["type"] != "keyword" || raw["ignore_above"] != float64(rawFieldLimit) {
		t.Fatalf("unexpected string field mapping: %s", post.body)
	}
}

func TestEnsureTemplateLeavesExistingTemplate(t *testing.T) {
	cluster := &templateCluster{getCode: http.StatusOK, getBody: `{"people_tpl":{"template":"stale-*"}}`}
	conn := fakeCluster(t, cluster.handle)

	if err := newTestClient(t, conn).EnsureTemplate(context.Background(), "people", "people_tpl"); err != nil {
		t.Fatalf("EnsureTemplate() error = %v", err)
	}
	if len(cluster.requests) != 1 {
		t.Fatalf("expected only the lookup, got %d requests", len(cluster.requests))
	}
}

func TestEnsureTemplateCreationFailure(t *testing.T) {
	cluster := &templateCluster{
		getCode:  http.StatusNotFound,
		getBody:  `{}`,
		postCode: http.StatusBadRequest,
		postBody: `{"error":"invalid_index_template_exception","status":400}`,
	}
	conn := fakeCluster(t, cluster.handle)

	err := newTestClient(t, conn).EnsureTemplate(context.Background(), "people", "people_tpl")
	if !errors.Is(err, ErrTemplate) {
		t.Fatalf("EnsureTemplate() error = %v, want ErrTemplate", err)
	}
	if !strings.Contains(err.Error(), "invalid_index_template_exception") {
		t.Fatalf("cluster message not surfaced: %v", err)
	}
}

func TestEnsureTemplateLookupFailure(t *testing.T) {
	cluster := &templateCluster{getCode: http.StatusInternalServerError, getBody: `{"error":{"type":"exception","reason":"boom"}}`}
	conn := fakeCluster(t, cluster.handle)

	err := newTestClient(t, conn).EnsureTemplate(context.Background(), "people", "people_tpl")
	if !errors.Is(err, ErrTemplate) {
		t.Fatalf("EnsureTemplate() error = %v, want ErrTemplate", err)
	}
	if len(cluster.requests) != 1 {
		t.Fatalf("no creation expected after failed lookup, got %d requests", len(cluster.requests))
	}
}

func TestEnsureTemplateTransportFailure(t *testing.T) {
	err := newTestClient(t, closedConnection(t)).EnsureTemplate(context.Background(), "people", "people_tpl")
	if err != ErrTemplate {
		t.Fatalf("EnsureTemplate() error = %v, want bare ErrTemplate", err)
	}
}
