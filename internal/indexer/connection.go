package indexer

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Connection describes how to reach the search cluster.
type Connection struct {
	Host     string
	Port     int
	UseSSL   bool
	Username string
	Password string
}

// Validate rejects connections that cannot be reached from an external caller.
// It never touches the network.
func (c Connection) Validate() error {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port is required", ErrInvalidConfig)
	}
	if isLocalHost(host) {
		return fmt.Errorf("%w: host %q is not reachable from outside this machine", ErrInvalidConfig, host)
	}
	return nil
}

func isLocalHost(host string) bool {
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// HasCredentials reports whether Basic-Auth should be sent.
func (c Connection) HasCredentials() bool {
	return c.Username != "" || c.Password != ""
}

func (c Connection) scheme() string {
	if c.UseSSL {
		return "https"
	}
	return "http"
}

// BaseURL returns scheme://host:port.
func (c Connection) BaseURL() string {
	u := url.URL{
		Scheme: c.scheme(),
		Host:   net.JoinHostPort(strings.Trim(c.Host, "[]"), strconv.Itoa(c.Port)),
	}
	return u.String()
}

// SearchURL returns the search endpoint for an index and document type.
func (c Connection) SearchURL(index, docType string) string {
	return fmt.Sprintf("%s/%s/%s/_search", c.BaseURL(), url.PathEscape(index), url.PathEscape(docType))
}
