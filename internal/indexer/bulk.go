package indexer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const authFailure = "AuthenticationException"

// BulkReport summarizes a bulk response the cluster accepted.
type BulkReport struct {
	Items  int
	Failed int
}

type bulkResponse struct {
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	Status int `json:"status"`
	Error  struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Submit posts one newline-delimited payload to the bulk endpoint.
func (c *Client) Submit(ctx context.Context, payload []byte) (BulkReport, error) {
	res, err := esapi.BulkRequest{
		Body:   bytes.NewReader(payload),
		Header: http.Header{"Content-Type": []string{"application/json"}},
	}.Do(ctx, c.es)
	if err != nil {
		c.logger.Warn("Bulk request failed", zap.Error(err))
		return BulkReport{}, ErrBulkSubmit
	}
	body, err := readBody(res)
	if err != nil {
		c.logger.Warn("Failed to read bulk response", zap.Error(err))
		return BulkReport{}, ErrBulkSubmit
	}

	if res.StatusCode != http.StatusOK {
		return BulkReport{}, bulkError(body)
	}

	var parsed bulkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// The cluster took the payload; an unreadable summary is not a failure.
		c.logger.Warn("Malformed bulk response", zap.Error(err))
		return BulkReport{}, nil
	}
	report := BulkReport{Items: len(parsed.Items)}
	if !parsed.Errors {
		return report, nil
	}

	var first bulkResponseItem
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Status < 300 {
				continue
			}
			if report.Failed == 0 {
				first = result
			}
			report.Failed++
		}
	}
	c.logger.Warn("Cluster rejected some bulk items",
		zap.Int("items", report.Items),
		zap.Int("failed", report.Failed),
		zap.String("type", first.Error.Type),
		zap.String("reason", first.Error.Reason),
	)
	return report, nil
}

func bulkError(body []byte) error {
	reply, err := decodeReply(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBulkSubmit, ErrUnknownCluster)
	}
	text := reply.errorText()
	switch {
	case strings.Contains(text, authFailure):
		return fmt.Errorf("%w: %w", ErrBulkSubmit, ErrCredentials)
	case text != "":
		return fmt.Errorf("%w: %s", ErrBulkSubmit, text)
	default:
		return fmt.Errorf("%w: %w", ErrBulkSubmit, ErrUnknownCluster)
	}
}
