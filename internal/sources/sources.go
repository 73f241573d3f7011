// Package sources defines the contract shared by the upstream vulnerability database adapters.
package sources

import (
	"context"
	"net/http"
	"time"

	"github.com/ortelius/component-monitor/model"
)

// Query is the input of a single upstream lookup.
type Query struct {
	Identifier string
	Name       string
	Version    string
	Ecosystem  model.Ecosystem
}

// Adapter fetches findings for one component from one upstream.
// Implementations make exactly one outbound request and keep no state between calls.
type Adapter interface {
	Source() model.Source
	Fetch(ctx context.Context, q Query) ([]model.Finding, error)
}

// DefaultHTTPClient is used when an adapter is built without a client.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
