// Package metrics provides the HTTP handler exposing tagreload's Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicholas-fedor/tagreload/pkg/metrics"
)

// Path is the route the metrics handler is registered under.
const Path = "/v1/metrics"

// Handler is an HTTP handle for serving metric data.
type Handler struct {
	Path    string
	Handle  http.HandlerFunc
	Metrics *metrics.Metrics
}

// New is a factory function creating a new Metrics instance.
//
// It initializes the default metrics so their collectors are registered before the
// first scrape.
func New() *Handler {
	m := metrics.Default()
	handler := promhttp.Handler()

	return &Handler{
		Path:    Path,
		Handle:  handler.ServeHTTP,
		Metrics: m,
	}
}
