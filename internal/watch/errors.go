package watch

import "errors"

var (
	// errStreamClosed indicates the event stream ended without reporting an error.
	errStreamClosed = errors.New("event stream closed")
	// errReconnectGaveUp indicates reconnecting exceeded its limit or the backoff stopped.
	errReconnectGaveUp = errors.New("gave up reconnecting to the docker event stream")
)
