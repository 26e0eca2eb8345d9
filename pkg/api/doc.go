// Package api provides an HTTP server for tagreload's API endpoints.
// It serves optional read-only endpoints, such as Prometheus metrics, behind an
// optional bearer token.
//
// Key components:
//   - API: Manages server setup and endpoint registration.
//   - RequireToken: Wraps HTTP handlers with token validation.
//   - RunHTTPServer: Runs a server until its context is cancelled.
//
// Usage example:
//
//	api := api.New("secure-token", ":8080")
//	api.RegisterHandler("/v1/metrics", promhttp.Handler())
//	if err := api.Start(ctx, false); err != nil {
//	    logrus.WithError(err).Error("API start failed")
//	}
//
// The package uses a custom ServeMux for routing, supports graceful shutdown,
// and integrates with logrus for logging server operations.
package api
