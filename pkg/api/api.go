package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

// API represents the HTTP API server for tagreload.
type API struct {
	Token       string // Bearer token; empty disables authentication.
	Addr        string // Listen address, e.g. ":8080".
	hasHandlers bool
	mux         *http.ServeMux // Custom mux to avoid global collisions
	server      HTTPServer     // Optional injected server for testing
}

// New is a factory function creating a new API instance.
// The server parameter is optional and allows dependency injection for testing.
func New(token, addr string, server ...HTTPServer) *API {
	var injectedServer HTTPServer
	if len(server) > 0 {
		injectedServer = server[0]
	}

	api := &API{
		Token:  token,
		Addr:   addr,
		mux:    http.NewServeMux(),
		server: injectedServer,
	}

	logrus.WithFields(logrus.Fields{
		"addr":       api.Addr,
		"token_auth": token != "",
	}).Debug("Initialized new API instance")

	return api
}

// RegisterFunc registers an HTTP handler function for the given path.
func (a *API) RegisterFunc(path string, handler func(http.ResponseWriter, *http.Request)) {
	a.RegisterHandler(path, http.HandlerFunc(handler))
}

// RegisterHandler registers an HTTP handler for the given path, behind the token check.
func (a *API) RegisterHandler(path string, handler http.Handler) {
	a.mux.Handle(path, a.authMiddleware(handler))
	a.hasHandlers = true
}

// Handler returns the routed and authenticated handler tree.
func (a *API) Handler() http.Handler {
	return a.mux
}

// Start starts the HTTP API server.
//
// With block set it runs in the foreground until ctx is cancelled; otherwise it runs in
// the background and shuts down when ctx is cancelled.
func (a *API) Start(ctx context.Context, block bool) error {
	if !a.hasHandlers {
		logrus.Debug("No handlers registered, skipping API start")

		return nil
	}

	if a.Token == "" {
		logrus.Warn("HTTP API token is unset, endpoints are served without authentication")
	}

	server := a.server
	if server == nil {
		server = &http.Server{
			Addr:              a.Addr,
			Handler:           a.mux,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       idleTimeout,
			BaseContext:       func(_ net.Listener) context.Context { return ctx },
		}
	}

	logrus.WithField("addr", a.Addr).Info("Starting HTTP API server")

	if block {
		return RunHTTPServer(ctx, server)
	}

	go func() {
		if err := RunHTTPServer(ctx, server); err != nil {
			logrus.WithError(err).Error("HTTP server failed")
		}
	}()

	return nil
}

// RequireToken wraps a handler function with authentication.
func (a *API) RequireToken(handler func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return a.authMiddleware(http.HandlerFunc(handler)).ServeHTTP
}

// authMiddleware rejects requests without the configured bearer token.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	if a.Token == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")

		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) != 1 {
			logrus.WithField("path", r.URL.Path).Debug("Rejected unauthorized API request")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// HTTPServer interface for RunHTTPServer.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// RunHTTPServer starts the HTTP server and handles graceful shutdown.
func RunHTTPServer(ctx context.Context, server HTTPServer) error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("%w: %w", errServerFailed, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%w: %w", errShutdownFailed, err)
		}

		return nil
	}
}
