package indexer

import (
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrConnection     = errors.New("cannot connect to the cluster")
	ErrCredentials    = errors.New("invalid username or password")
	ErrTemplate       = errors.New("cannot create index template")
	ErrBulkSubmit     = errors.New("cannot send data to the cluster")
	ErrUnknownCluster = errors.New("unknown cluster error")
)

// clusterReply is the subset of an error body the cluster (or a proxy in
// front of it) may return.
type clusterReply struct {
	Message string              `json:"message"`
	Error   jsoniter.RawMessage `json:"error"`
}

// errorText renders the error field whether it is a string or an object.
func (r clusterReply) errorText() string {
	raw := strings.TrimSpace(string(r.Error))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	return raw
}

// text returns whatever the cluster said, preferring the error field.
func (r clusterReply) text() string {
	if t := r.errorText(); t != "" {
		return t
	}
	return r.Message
}

func decodeReply(body []byte) (clusterReply, error) {
	var reply clusterReply
	err := json.Unmarshal(body, &reply)
	return reply, err
}

func isForbidden(message string) bool {
	return strings.EqualFold(strings.TrimSpace(message), "forbidden")
}
