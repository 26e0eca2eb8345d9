// Package api wires tagreload's optional HTTP endpoints to the API server.
package api

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/tagreload/pkg/api"
	metricsAPI "github.com/nicholas-fedor/tagreload/pkg/api/metrics"
)

// GetAPIAddr formats the API address string based on host and port.
func GetAPIAddr(host, port string) string {
	address := host + ":" + port
	if host != "" && strings.Contains(host, ":") && net.ParseIP(host) != nil {
		address = "[" + host + "]:" + port
	}

	return address
}

// SetupAndStartAPI launches the HTTP API in the background if any endpoint is enabled.
//
// Parameters:
//   - ctx: The context controlling the API's lifecycle, enabling graceful shutdown on cancellation.
//   - apiHost: The host to bind the HTTP API to.
//   - apiPort: The port for the HTTP API server.
//   - apiToken: The bearer token for HTTP API access; empty disables authentication.
//   - enableMetricsAPI: Enables the Prometheus metrics endpoint.
//   - server: Optional injected server for testing.
//
// Returns:
//   - error: An error if the API fails to start, nil otherwise.
func SetupAndStartAPI(
	ctx context.Context,
	apiHost, apiPort, apiToken string,
	enableMetricsAPI bool,
	server ...api.HTTPServer,
) error {
	if !enableMetricsAPI {
		logrus.Debug("HTTP API disabled")

		return nil
	}

	address := GetAPIAddr(apiHost, apiPort)
	httpAPI := api.New(apiToken, address, server...)

	metricsHandler := metricsAPI.New()
	httpAPI.RegisterFunc(metricsHandler.Path, metricsHandler.Handle)

	if err := httpAPI.Start(ctx, false); err != nil {
		logrus.WithError(err).Error("Failed to start API")

		return fmt.Errorf("failed to start HTTP API: %w", err)
	}

	return nil
}
