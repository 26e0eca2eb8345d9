// Package watch drives tagreload's event loop.
// It subscribes to the runtime's tag events, hands each event to a reconciliation
// handler one at a time and re-subscribes with exponential backoff when the stream breaks.
//
// Key components:
//   - Watcher: Blocking loop over the event stream with a per-event error boundary.
//   - RunReloadsOnEvents: Runs a Watcher until an interrupt signal or context cancellation.
//   - DefaultBackOff: Exponential reconnect policy.
//   - WithReconnectLimit: Bounds the time spent reconnecting after the stream breaks.
package watch
