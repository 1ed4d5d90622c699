package indexer

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"go.uber.org/zap"
)

// fakeCluster starts an HTTP server that answers like an Elasticsearch node
// and returns a connection pointing at it.
func fakeCluster(t *testing.T, handler http.HandlerFunc) Connection {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return connectionFor(t, srv.URL)
}

func connectionFor(t *testing.T, raw string) Connection {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host: %v", err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return Connection{Host: host, Port: p}
}

func newTestClient(t *testing.T, conn Connection) *Client {
	t.Helper()
	c, err := New(conn, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

// closedConnection points at a port nothing listens on.
func closedConnection(t *testing.T) Connection {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	conn := connectionFor(t, srv.URL)
	srv.Close()
	return conn
}
