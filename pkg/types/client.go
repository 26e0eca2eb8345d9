package types

import "context"

// Client defines the container runtime operations used by tagreload.
//
// It abstracts the Docker Engine API so that reconciliation logic can be tested without a daemon.
type Client interface {
	// ListContainers retrieves the containers currently running on the host.
	ListContainers(ctx context.Context) ([]RunningContainer, error)

	// InspectContainer fetches the configuration of a single container.
	InspectContainer(ctx context.Context, containerID ContainerID) (ContainerInspection, error)

	// RemoveContainer force-removes a container, even while it is running.
	RemoveContainer(ctx context.Context, containerID ContainerID) error

	// CreateContainer creates a new container from the given spec and returns its ID.
	CreateContainer(ctx context.Context, spec RecreateSpec) (ContainerID, error)

	// StartContainer starts a created container.
	StartContainer(ctx context.Context, containerID ContainerID) error

	// StreamEvents subscribes to the runtime's tag events.
	//
	// The error channel receives at most one value, after which the subscription is over.
	// Subscribing again starts from the current stream position; past events are not replayed.
	StreamEvents(ctx context.Context) (<-chan TagEvent, <-chan error)

	// GetVersion returns the client's API version.
	GetVersion() string
}
