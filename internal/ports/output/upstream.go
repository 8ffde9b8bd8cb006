// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"encoding/json"
)

// UpstreamRequest is one query sent to the catalog data service.
type UpstreamRequest struct {
	Operation string // Root field name, the key of the result in the data object
	Query     string // Rendered query text
}

// Upstream defines the secondary port for the remote data service.
type Upstream interface {
	// Execute sends the query and returns the raw value stored under
	// data[Operation]. Failures are reported as *domain.TransportError.
	Execute(ctx context.Context, req UpstreamRequest) (json.RawMessage, error)
}
