package api

import "errors"

var (
	// errServerFailed indicates the HTTP server stopped with an error.
	errServerFailed = errors.New("http api server failed")
	// errShutdownFailed indicates the HTTP server did not shut down cleanly.
	errShutdownFailed = errors.New("http api server shutdown failed")
)
