package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/distribution/reference"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// latestSuffix is stripped from the event name to build the second candidate.
const latestSuffix = ":latest"

// Options configures how matched containers are recreated.
type Options struct {
	PreserveName bool // Create the replacement under the old container name.
}

// CandidateNames returns the image names a container may have been created from.
//
// The raw reference is always first; the reference without a trailing ":latest"
// follows when it differs.
func CandidateNames(imageReference string) []string {
	candidates := []string{imageReference}

	if stripped := strings.TrimSuffix(imageReference, latestSuffix); stripped != imageReference {
		candidates = append(candidates, stripped)
	}

	return candidates
}

// matches reports whether image equals one of the candidates exactly.
func matches(image string, candidates []string) bool {
	for _, candidate := range candidates {
		if image == candidate {
			return true
		}
	}

	return false
}

// Reload reconciles the running containers with a tag event.
//
// Every running container whose inspected image equals a candidate name is force
// removed, recreated from the event's image with its ports, volumes, environment and
// extra hosts, and started. Containers are handled in listing order; a failure only
// ends the attempt for that container. Events other than tag events are ignored
// without any runtime call.
//
// Parameters:
//   - ctx: Context for runtime calls.
//   - client: Container runtime client.
//   - event: Decoded runtime event.
//   - opts: Recreate options.
//
// Returns:
//   - []types.ReloadReport: One report per matched container.
//   - error: Non-nil if the event is invalid or containers cannot be listed.
func Reload(
	ctx context.Context,
	client types.Client,
	event types.TagEvent,
	opts Options,
) ([]types.ReloadReport, error) {
	if !event.IsTag() {
		return nil, nil
	}

	named, err := reference.ParseNormalizedNamed(event.ImageReference)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", errInvalidReference, event.ImageReference, err)
	}

	candidates := CandidateNames(event.ImageReference)
	clog := logrus.WithFields(logrus.Fields{
		"image":      event.ImageReference,
		"familiar":   reference.FamiliarString(named),
		"candidates": candidates,
	})
	clog.Debug("Handling image tag event")

	containers, err := client.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errListContainersFailed, err)
	}

	var reports []types.ReloadReport

	for _, running := range containers {
		inspection, err := client.InspectContainer(ctx, running.ID)
		if err != nil {
			fields := logrus.Fields{
				"container":    running.Name(),
				"container_id": running.ID.ShortID(),
			}

			if errdefs.IsNotFound(err) {
				clog.WithFields(fields).Debug("Container vanished before inspection, skipping")
			} else {
				clog.WithFields(fields).WithError(err).Error("Failed to inspect container, skipping")
			}

			continue
		}

		if !matches(inspection.Image, candidates) {
			continue
		}

		reports = append(reports, reloadContainer(ctx, client, event.ImageReference, running, inspection, opts))
	}

	if len(reports) == 0 {
		clog.WithField("scanned", len(containers)).Debug("No running container uses the tagged image")
	}

	return reports, nil
}

// reloadContainer replaces one matched container: remove, create, start.
//
// The recreate spec is derived before the old container is removed. Nothing is
// rolled back; a container removed before a failed create stays absent.
func reloadContainer(
	ctx context.Context,
	client types.Client,
	image string,
	running types.RunningContainer,
	inspection types.ContainerInspection,
	opts Options,
) types.ReloadReport {
	report := types.ReloadReport{
		ContainerID:   running.ID,
		ContainerName: running.Name(),
		Image:         image,
	}

	clog := logrus.WithFields(logrus.Fields{
		"container":    report.ContainerName,
		"container_id": running.ID.ShortID(),
		"image":        image,
	})

	spec, err := BuildRecreateSpec(image, running, inspection, opts.PreserveName)
	if err != nil {
		report.Err = fmt.Errorf("%w: %w", errBuildSpecFailed, err)
		clog.WithError(err).Error("Failed to build recreate spec, container left untouched")

		return report
	}

	clog.Infof("Reloading container %s", report.ContainerName)

	if err := client.RemoveContainer(ctx, running.ID); err != nil {
		report.Err = fmt.Errorf("%w: %w", errRemoveContainerFailed, err)
		clog.WithError(err).Error("Failed to remove container")

		return report
	}

	report.Removed = true

	newID, err := client.CreateContainer(ctx, spec)
	if err != nil {
		report.Err = fmt.Errorf("%w: %w", errCreateContainerFailed, err)
		clog.WithError(err).Error("Failed to create replacement, container is now absent")

		return report
	}

	report.NewID = newID
	clog = clog.WithField("new_id", newID.ShortID())

	if err := client.StartContainer(ctx, newID); err != nil {
		report.Err = fmt.Errorf("%w: %w", errStartContainerFailed, err)
		clog.WithError(err).Error("Failed to start replacement")

		return report
	}

	clog.Info("Reloaded container")

	return report
}
