// Package types defines the core interfaces and structs for tagreload.
// It provides the runtime capability surface and the transient entities derived per tag event.
//
// Key components:
//   - Client: Interface for the container runtime operations tagreload consumes.
//   - TagEvent: A decoded runtime event naming a retagged image reference.
//   - RunningContainer: Snapshot of a running container from the list call.
//   - ContainerInspection: Configuration extracted from the inspect call.
//   - RecreateSpec: Configuration passed to the create call when reloading a container.
//   - ReloadReport: Outcome of reloading a single container.
//   - Notifier: Interface for reporting reload outcomes to external services.
//
// Usage example:
//
//	events, errs := client.StreamEvents(ctx)
//	for event := range events {
//	    if event.IsTag() {
//	        logrus.WithField("image", event.ImageReference).Info("Image retagged")
//	    }
//	}
//
// None of these entities outlive a single reconciliation pass.
package types
