package actions

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/tagreload/pkg/metrics"
	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// RunReloadWithNotifications reconciles one tag event and reports each reload outcome.
//
// It executes Reload, sends one notification per matched container and returns a
// metric summarizing the event for monitoring purposes.
//
// Parameters:
//   - ctx: Context for runtime calls.
//   - client: The Docker client instance used for container operations.
//   - notifier: The notification system instance; nil disables notifications.
//   - event: Decoded runtime event.
//   - opts: Recreate options.
//
// Returns:
//   - *metrics.Metric: Summary of the event (matched, reloaded, failed counts), nil if reconciliation aborted.
//   - error: Non-nil if reconciliation aborted before any container was handled.
func RunReloadWithNotifications(
	ctx context.Context,
	client types.Client,
	notifier types.Notifier,
	event types.TagEvent,
	opts Options,
) (*metrics.Metric, error) {
	reports, err := Reload(ctx, client, event, opts)
	if err != nil {
		return nil, err
	}

	reloadedNames := make([]string, 0, len(reports))
	for _, report := range reports {
		if !report.Failed() {
			reloadedNames = append(reloadedNames, report.ContainerName)
		}
	}

	metric := metrics.NewMetric(reports)

	logrus.WithFields(logrus.Fields{
		"image":          event.ImageReference,
		"matched":        metric.Matched,
		"reloaded":       metric.Reloaded,
		"failed":         metric.Failed,
		"reloaded_names": reloadedNames,
	}).Debug("Report before notification")

	if notifier != nil {
		for _, report := range reports {
			notifier.SendReload(report)
		}
	}

	return metric, nil
}
