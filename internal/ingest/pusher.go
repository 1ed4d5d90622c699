// Package ingest runs the push pipeline: it turns resolved sheet cells into
// bulk payloads and sends them to the cluster.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minhtt159/sheet-ingest/internal/bulk"
	"github.com/minhtt159/sheet-ingest/internal/indexer"
	"github.com/minhtt159/sheet-ingest/internal/sheet"
)

// ErrNoData is returned when a push finished without sending a single
// non-empty document.
var ErrNoData = errors.New("no data was sent to the cluster")

// Cluster is the part of indexer.Client the pipeline needs.
type Cluster interface {
	EnsureTemplate(ctx context.Context, index, name string) error
	Submit(ctx context.Context, payload []byte) (indexer.BulkReport, error)
}

// Request carries one push. Header may be nil, in which case the first row of
// Rows is the header. IDs is nil when rows have no document id column.
type Request struct {
	Index    string
	Type     string
	Template string
	Header   []any
	Rows     [][]any
	IDs      []any
}

// Result describes a successful push.
type Result struct {
	IngestID  string
	SearchURL string
	Documents int
	Skipped   int
	Batches   int
	Rejected  int
}

// Pusher sends sheet rows to one cluster.
type Pusher struct {
	logger   *zap.Logger
	cluster  Cluster
	conn     indexer.Connection
	maxLines int
}

// NewPusher returns a Pusher. maxLines <= 0 uses bulk.MaxLines.
func NewPusher(logger *zap.Logger, cluster Cluster, conn indexer.Connection, maxLines int) *Pusher {
	if maxLines <= 0 {
		maxLines = bulk.MaxLines
	}
	return &Pusher{
		logger:   logger,
		cluster:  cluster,
		conn:     conn,
		maxLines: maxLines,
	}
}

// Push validates req, provisions the template when one is named, and sends
// every non-empty row. A failing batch aborts the push; batches already sent
// stay in the cluster.
func (p *Pusher) Push(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	headerCells, rows := req.Header, req.Rows
	if headerCells == nil {
		headerCells, rows = rows[0], rows[1:]
	}
	header, err := sheet.SanitizeHeader(headerCells)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	if err := sheet.CheckColumns(header, rows[0]); err != nil {
		return nil, err
	}

	var ids []string
	if req.IDs != nil {
		if ids, err = sheet.ResolveIDs(req.IDs, len(rows)); err != nil {
			return nil, err
		}
	}

	result := &Result{IngestID: uuid.NewString()}
	logger := p.logger.With(
		zap.String("ingest_id", result.IngestID),
		zap.String("index", req.Index),
		zap.String("type", req.Type),
	)

	if req.Template != "" {
		if err := p.cluster.EnsureTemplate(ctx, req.Index, req.Template); err != nil {
			return nil, err
		}
	}

	batcher := bulk.NewBatcher(p.maxLines, func(ctx context.Context, payload []byte) error {
		report, err := p.cluster.Submit(ctx, payload)
		if err != nil {
			return err
		}
		result.Rejected += report.Failed
		return nil
	})

	for i, row := range rows {
		doc := sheet.MapRow(header, row)
		if len(doc) == 0 {
			result.Skipped++
			continue
		}
		var id string
		if ids != nil {
			id = ids[i]
		}
		if err := batcher.Add(ctx, bulk.NewAction(req.Index, id, doc)); err != nil {
			logger.Error("Push aborted", zap.Int("batches_sent", batcher.Flushes()), zap.Error(err))
			return nil, err
		}
		result.Documents++
	}
	if err := batcher.Close(ctx); err != nil {
		logger.Error("Push aborted", zap.Int("batches_sent", batcher.Flushes()), zap.Error(err))
		return nil, err
	}
	result.Batches = batcher.Flushes()

	if result.Documents == 0 {
		return nil, ErrNoData
	}

	result.SearchURL = p.conn.SearchURL(req.Index, req.Type)
	logger.Info("Push complete",
		zap.Int("documents", result.Documents),
		zap.Int("skipped", result.Skipped),
		zap.Int("batches", result.Batches),
		zap.Int("rejected", result.Rejected),
	)
	return result, nil
}

func validateRequest(req Request) error {
	if err := checkName("index name", req.Index, true); err != nil {
		return err
	}
	if err := checkName("document type", req.Type, true); err != nil {
		return err
	}
	if err := checkName("template name", req.Template, false); err != nil {
		return err
	}
	if len(req.Rows) == 0 {
		return fmt.Errorf("%w: data range is required", indexer.ErrInvalidConfig)
	}
	return nil
}

func checkName(what, value string, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%w: %s is required", indexer.ErrInvalidConfig, what)
		}
		return nil
	}
	if strings.ContainsFunc(value, isSpace) {
		return fmt.Errorf("%w: %s %q must not contain spaces", indexer.ErrInvalidConfig, what, value)
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
