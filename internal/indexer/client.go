// Package indexer talks to the search cluster: connectivity checks, index
// template provisioning and bulk submission.
package indexer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client issues status, template and bulk requests against one cluster.
type Client struct {
	es     *elasticsearch.Client
	conn   Connection
	logger *zap.Logger
}

// New builds a client for conn. Basic-Auth is injected by the transport when
// credentials are set. Retries are disabled: a failed request aborts the caller.
func New(conn Connection, logger *zap.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses:    []string{conn.BaseURL()},
		DisableRetry: true,
	}
	if conn.HasCredentials() {
		cfg.Username = conn.Username
		cfg.Password = conn.Password
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Client{
		es:     es,
		conn:   conn,
		logger: logger.With(zap.String("cluster", conn.BaseURL())),
	}, nil
}

// Connection returns the connection the client was built with.
func (c *Client) Connection() Connection {
	return c.conn
}

// Check probes the cluster root endpoint.
func (c *Client) Check(ctx context.Context) error {
	res, err := esapi.InfoRequest{}.Do(ctx, c.es)
	if err != nil {
		c.logger.Warn("Cluster status probe failed", zap.Error(err))
		return ErrConnection
	}
	body, err := readBody(res)
	if err != nil {
		c.logger.Warn("Failed to read status response", zap.Error(err))
		return ErrConnection
	}
	if res.StatusCode == http.StatusOK {
		return nil
	}

	reply, err := decodeReply(body)
	if err != nil {
		c.logger.Warn("Malformed status response", zap.Int("status", res.StatusCode), zap.Error(err))
		return ErrConnection
	}
	c.logger.Debug("Cluster rejected status probe", zap.Int("status", res.StatusCode), zap.String("message", reply.text()))
	switch msg := reply.text(); {
	case isForbidden(reply.Message):
		return fmt.Errorf("%w: %w", ErrConnection, ErrCredentials)
	case msg != "":
		return fmt.Errorf("%w: %s", ErrConnection, msg)
	default:
		return ErrConnection
	}
}

func readBody(res *esapi.Response) ([]byte, error) {
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}
