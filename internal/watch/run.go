package watch

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// exit terminates the process when a second interrupt arrives.
var exit = os.Exit

// RunReloadsOnEvents runs the watcher until an interrupt signal or context cancellation.
//
// SIGINT and SIGTERM stop the loop after the event being handled, if any, has been
// reconciled. A second signal exits immediately with status 1. The notifier is closed
// on the way out.
//
// Parameters:
//   - ctx: The context controlling the loop's lifecycle.
//   - watcher: The event loop to run.
//   - notifier: The notification system instance; may be nil.
//
// Returns:
//   - error: Non-nil if the event stream could not be re-established.
func RunReloadsOnEvents(ctx context.Context, watcher *Watcher, notifier types.Notifier) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(interrupt)

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case sig := <-interrupt:
			logrus.WithField("signal", sig.String()).Debug("Received interrupt signal, stopping event loop...")
			cancel()
		case <-stopped:
			return
		}

		select {
		case sig := <-interrupt:
			logrus.WithField("signal", sig.String()).Warn("Received second interrupt signal, exiting without waiting for the current reload")
			exit(1)
		case <-stopped:
		}
	}()

	err := watcher.Run(ctx)

	if notifier != nil {
		notifier.Close()
	}

	if err != nil {
		return err
	}

	logrus.Info("Shutting down")

	return nil
}
