package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

const (
	// maxReconnectInterval caps the wait between two subscription attempts.
	maxReconnectInterval = 30 * time.Second
	// stableStreamAfter is how long a quiet subscription must stay up to count as established.
	stableStreamAfter = 500 * time.Millisecond
)

// Handler reconciles one tag event.
type Handler func(ctx context.Context, event types.TagEvent) error

// Watcher subscribes to tag events and handles them strictly one after another.
type Watcher struct {
	client      types.Client
	handler     Handler
	backoff     backoff.BackOff
	maxElapsed  time.Duration
	onReconnect func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithBackOff sets the reconnect policy.
func WithBackOff(b backoff.BackOff) Option {
	return func(w *Watcher) {
		w.backoff = b
	}
}

// WithReconnectLimit bounds the time spent reconnecting after the stream breaks.
//
// The clock starts when an established stream fails. Zero retries forever.
func WithReconnectLimit(maxElapsed time.Duration) Option {
	return func(w *Watcher) {
		w.maxElapsed = maxElapsed
	}
}

// WithReconnectHook registers a function called before every re-subscription.
func WithReconnectHook(hook func()) Option {
	return func(w *Watcher) {
		w.onReconnect = hook
	}
}

// DefaultBackOff returns an exponential reconnect policy that never stops on its own.
func DefaultBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = maxReconnectInterval
	policy.MaxElapsedTime = 0

	return policy
}

// New creates a Watcher for the given client and handler.
func New(client types.Client, handler Handler, opts ...Option) *Watcher {
	watcher := &Watcher{
		client:  client,
		handler: handler,
		backoff: DefaultBackOff(),
	}

	for _, opt := range opts {
		opt(watcher)
	}

	return watcher
}

// Run blocks until ctx is cancelled or reconnecting is abandoned.
//
// Each tag event is handled to completion before the next one is read. Handlers run
// on a context detached from ctx, so an in-flight reconciliation finishes after
// cancellation. A broken stream is re-subscribed from the current position; events
// emitted while disconnected are not replayed.
//
// A subscription that delivered an event or stayed up for stableStreamAfter is
// established: its failure starts a new reconnect episode with a fresh backoff and
// reconnect limit.
//
// Returns:
//   - error: nil after cancellation, non-nil if reconnecting was abandoned.
func (w *Watcher) Run(ctx context.Context) error {
	var brokenSince time.Time

	for {
		established, err := w.subscribe(ctx)
		if ctx.Err() != nil {
			logrus.Debug("Event loop stopped")

			return nil
		}

		if established || brokenSince.IsZero() {
			brokenSince = time.Now()
			w.backoff.Reset()
		}

		wait := w.backoff.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("%w: %w", errReconnectGaveUp, err)
		}

		if w.maxElapsed > 0 {
			remaining := w.maxElapsed - time.Since(brokenSince)
			if remaining <= 0 {
				return fmt.Errorf("%w after %s: %w", errReconnectGaveUp, w.maxElapsed, err)
			}

			wait = min(wait, remaining)
		}

		logrus.WithError(err).
			WithField("retry_in", wait).
			Warn("Docker event stream interrupted, reconnecting")

		select {
		case <-ctx.Done():
			logrus.Debug("Event loop stopped while waiting to reconnect")

			return nil
		case <-time.After(wait):
		}

		if w.onReconnect != nil {
			w.onReconnect()
		}
	}
}

// subscribe consumes one subscription until it fails or ctx is cancelled.
// It reports whether the subscription was established before it ended.
func (w *Watcher) subscribe(ctx context.Context) (bool, error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	started := time.Now()
	received := false

	events, errs := w.client.StreamEvents(subCtx)

	logrus.Debug("Waiting for image tag events")

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case event, ok := <-events:
			if !ok {
				// The error channel reports why.
				events = nil

				continue
			}

			received = true

			w.handle(ctx, event)
		case err, ok := <-errs:
			established := received || time.Since(started) >= stableStreamAfter

			if !ok {
				return established, errStreamClosed
			}

			return established, err
		}
	}
}

// handle runs the handler for one event and contains its failures.
func (w *Watcher) handle(ctx context.Context, event types.TagEvent) {
	if !event.IsTag() {
		logrus.WithField("action", event.Action).Trace("Ignoring non-tag event")

		return
	}

	clog := logrus.WithField("image", event.ImageReference)

	defer func() {
		if r := recover(); r != nil {
			clog.WithField("panic", r).Error("Recovered from panic while handling tag event")
		}
	}()

	if err := w.handler(context.WithoutCancel(ctx), event); err != nil {
		clog.WithError(err).Error("Failed to handle tag event")
	}
}
