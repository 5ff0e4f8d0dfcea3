// Package metrics provides the HTTP handler exposing backupnotify metrics in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler is an HTTP handle for serving metric data.
type Handler struct {
	Path   string
	Handle http.HandlerFunc
}

// New is a factory function creating a new metrics handler.
//
// Parameters:
//   - gatherer: Source of the exposed metrics; nil uses the default Prometheus registry.
//
// Returns:
//   - *Handler: Handler for the /v1/metrics endpoint.
func New(gatherer prometheus.Gatherer) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	handler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})

	return &Handler{
		Path:   "/v1/metrics",
		Handle: handler.ServeHTTP,
	}
}
