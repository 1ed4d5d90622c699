// Package settings persists the cluster connection between runs.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/minhtt159/sheet-ingest/internal/indexer"
)

const (
	KeyHost       = "host"
	KeyPort       = "port"
	KeyUseSSL     = "use_ssl"
	KeyUsername   = "username"
	KeyPassword   = "password"
	KeyWasChecked = "was_checked"
)

// ErrNotConfigured is returned by Load before anything was saved.
var ErrNotConfigured = errors.New("cluster connection is not configured")

// Settings is what the store holds.
type Settings struct {
	Connection indexer.Connection
	// WasChecked is true once a connectivity check passed for this connection.
	WasChecked bool
}

// Store reads and writes settings as a YAML file.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings. port and use_ssl may be stored as strings.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, ErrNotConfigured
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	return Settings{
		Connection: indexer.Connection{
			Host:     v.GetString(KeyHost),
			Port:     v.GetInt(KeyPort),
			UseSSL:   v.GetBool(KeyUseSSL),
			Username: v.GetString(KeyUsername),
			Password: v.GetString(KeyPassword),
		},
		WasChecked: v.GetBool(KeyWasChecked),
	}, nil
}

// Save validates and stores conn. The connection has to be checked again
// afterwards.
func (s *Store) Save(conn indexer.Connection) error {
	if err := conn.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(Settings{Connection: conn})
}

// MarkChecked records a successful connectivity check of conn. It reports
// false and leaves the file alone when another connection was saved since.
func (s *Store) MarkChecked(conn indexer.Connection) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load()
	if err != nil {
		return false, err
	}
	if current.Connection != conn {
		return false, nil
	}
	current.WasChecked = true
	return true, s.write(current)
}

func (s *Store) write(st Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigPermissions(0o600)
	v.Set(KeyHost, st.Connection.Host)
	v.Set(KeyPort, st.Connection.Port)
	v.Set(KeyUseSSL, st.Connection.UseSSL)
	v.Set(KeyUsername, st.Connection.Username)
	v.Set(KeyPassword, st.Connection.Password)
	v.Set(KeyWasChecked, st.WasChecked)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
