// Package service ties the stored connection settings to the cluster
// operations exposed over HTTP, gRPC and the CLI.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/minhtt159/sheet-ingest/internal/indexer"
	"github.com/minhtt159/sheet-ingest/internal/ingest"
	"github.com/minhtt159/sheet-ingest/internal/settings"
)

// RedactedPassword replaces a stored password in Settings output.
const RedactedPassword = "********"

// Cluster is what the service needs from a cluster client.
type Cluster interface {
	ingest.Cluster
	Check(ctx context.Context) error
}

// Dialer builds a Cluster for a validated connection.
type Dialer func(conn indexer.Connection, logger *zap.Logger) (Cluster, error)

// DialCluster is the default Dialer.
func DialCluster(conn indexer.Connection, logger *zap.Logger) (Cluster, error) {
	c, err := indexer.New(conn, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Options tune pushes. Zero values fall back to package defaults.
type Options struct {
	MaxBatchLines int
	DefaultType   string
}

// Service implements the settings, check and push operations.
type Service struct {
	store  *settings.Store
	logger *zap.Logger
	opts   Options
	dial   Dialer
}

// New creates a Service. A nil dial uses DialCluster.
func New(store *settings.Store, logger *zap.Logger, opts Options, dial Dialer) *Service {
	if dial == nil {
		dial = DialCluster
	}
	return &Service{
		store:  store,
		logger: logger,
		opts:   opts,
		dial:   dial,
	}
}

// SaveSettings stores a new connection. It must be checked again before the
// health probe reports serving.
func (s *Service) SaveSettings(conn indexer.Connection) error {
	if err := s.store.Save(conn); err != nil {
		return err
	}
	s.logger.Info("Connection settings saved", zap.String("cluster", conn.BaseURL()))
	return nil
}

// Settings returns the stored settings with the password redacted.
func (s *Service) Settings() (settings.Settings, error) {
	st, err := s.store.Load()
	if err != nil {
		return settings.Settings{}, err
	}
	if st.Connection.Password != "" {
		st.Connection.Password = RedactedPassword
	}
	return st, nil
}

// Check probes the stored cluster and records the result.
func (s *Service) Check(ctx context.Context) error {
	st, cluster, err := s.connect()
	if err != nil {
		return err
	}
	if err := cluster.Check(ctx); err != nil {
		return err
	}
	if !st.WasChecked {
		marked, err := s.store.MarkChecked(st.Connection)
		switch {
		case err != nil:
			s.logger.Warn("Failed to record successful check", zap.Error(err))
		case !marked:
			s.logger.Info("Settings changed during the check, leaving them unchecked")
		}
	}
	return nil
}

// Push sends req to the stored cluster. An empty req.Type uses the
// configured default type.
func (s *Service) Push(ctx context.Context, req ingest.Request) (*ingest.Result, error) {
	st, cluster, err := s.connect()
	if err != nil {
		return nil, err
	}
	if !st.WasChecked {
		s.logger.Warn("Pushing to a cluster that was never checked", zap.String("cluster", st.Connection.BaseURL()))
	}
	if req.Type == "" {
		req.Type = s.opts.DefaultType
	}

	pusher := ingest.NewPusher(s.logger, cluster, st.Connection, s.opts.MaxBatchLines)
	return pusher.Push(ctx, req)
}

func (s *Service) connect() (settings.Settings, Cluster, error) {
	st, err := s.store.Load()
	if err != nil {
		if errors.Is(err, settings.ErrNotConfigured) {
			return st, nil, err
		}
		s.logger.Error("Failed to load settings", zap.Error(err))
		return st, nil, err
	}
	if err := st.Connection.Validate(); err != nil {
		return st, nil, err
	}
	cluster, err := s.dial(st.Connection, s.logger)
	if err != nil {
		return st, nil, err
	}
	return st, cluster, nil
}
