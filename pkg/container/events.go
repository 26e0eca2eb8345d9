package container

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	dockerEvents "github.com/docker/docker/api/types/events"
	dockerFilters "github.com/docker/docker/api/types/filters"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// tagEventFilters narrows the daemon event stream to image tag events.
func tagEventFilters() dockerFilters.Args {
	return dockerFilters.NewArgs(
		dockerFilters.Arg("type", string(dockerEvents.ImageEventType)),
		dockerFilters.Arg("event", types.ActionTag),
	)
}

// StreamEvents subscribes to the daemon's image tag events.
//
// Messages are converted to types.TagEvent and forwarded in order. The error channel
// receives at most one value: the stream error, io.EOF when the daemon closed the
// stream, or the context error when ctx is cancelled.
//
// Parameters:
//   - ctx: Context bounding the subscription.
//
// Returns:
//   - <-chan types.TagEvent: Decoded events.
//   - <-chan error: Terminal subscription error.
func (c client) StreamEvents(ctx context.Context) (<-chan types.TagEvent, <-chan error) {
	out := make(chan types.TagEvent)
	outErr := make(chan error, 1)

	messages, errs := c.api.Events(ctx, dockerEvents.ListOptions{Filters: tagEventFilters()})

	logrus.Debug("Subscribed to Docker image tag events")

	go func() {
		defer close(out)

		for {
			select {
			case msg := <-messages:
				event := types.TagEvent{
					Action:         string(msg.Action),
					ImageReference: msg.Actor.Attributes["name"],
					ActorID:        msg.Actor.ID,
					Time:           eventTime(msg),
				}

				logrus.WithFields(logrus.Fields{
					"action": event.Action,
					"image":  event.ImageReference,
				}).Trace("Received Docker event")

				select {
				case out <- event:
				case <-ctx.Done():
					outErr <- ctx.Err()

					return
				}
			case err := <-errs:
				outErr <- fmt.Errorf("%w: %w", errEventStreamFailed, err)

				return
			}
		}
	}()

	return out, outErr
}

// eventTime returns the event timestamp, preferring nanosecond precision.
func eventTime(msg dockerEvents.Message) time.Time {
	if msg.TimeNano != 0 {
		return time.Unix(0, msg.TimeNano)
	}

	return time.Unix(msg.Time, 0)
}
