package client

import (
	"net/http"

	"github.com/GeovanniVera/chamus/cmd/chamusctl/internal/metrics"
)

// NewHTTPClient returns the http.Client used for catalog API calls. Every
// round trip is recorded in the Prometheus metrics. It sets no timeout;
// callers bound requests through their context.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: metrics.Transport(http.DefaultTransport)}
}
