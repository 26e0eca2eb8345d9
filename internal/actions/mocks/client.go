// Package mocks provides mock implementations for testing tagreload components.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// MockClient is a mock implementation of types.Client for testing purposes.
// It serves containers from TestData and records every runtime call in order.
type MockClient struct {
	TestData *TestData
	mu       *sync.Mutex
}

// TestData holds configuration data for MockClient's test behavior.
type TestData struct {
	Containers  []types.RunningContainer                     // Returned by ListContainers.
	Inspections map[types.ContainerID]types.ContainerInspection // Returned by InspectContainer.

	ListErr    error                       // Returned by ListContainers when set.
	InspectErr map[types.ContainerID]error // Per-container inspect errors.
	RemoveErr  map[types.ContainerID]error // Per-container remove errors.
	CreateErr  error                       // Returned by CreateContainer when set.
	StartErr   error                       // Returned by StartContainer when set.

	Calls   []string             // Runtime calls as "Method:argument".
	Created []types.RecreateSpec // Specs passed to CreateContainer.
	created int
}

// CreateMockClient constructs a new MockClient instance for testing.
func CreateMockClient(data *TestData) MockClient {
	if data.Inspections == nil {
		data.Inspections = map[types.ContainerID]types.ContainerInspection{}
	}

	return MockClient{TestData: data, mu: &sync.Mutex{}}
}

func (client MockClient) record(call string) {
	client.mu.Lock()
	defer client.mu.Unlock()

	client.TestData.Calls = append(client.TestData.Calls, call)
}

// MutatingCalls returns the recorded remove, create and start calls.
func (client MockClient) MutatingCalls() []string {
	client.mu.Lock()
	defer client.mu.Unlock()

	calls := []string{}

	for _, call := range client.TestData.Calls {
		if strings.HasPrefix(call, "Remove:") ||
			strings.HasPrefix(call, "Create:") ||
			strings.HasPrefix(call, "Start:") {
			calls = append(calls, call)
		}
	}

	return calls
}

// ListContainers returns the preconfigured list of containers from TestData.
func (client MockClient) ListContainers(_ context.Context) ([]types.RunningContainer, error) {
	client.record("List")

	if client.TestData.ListErr != nil {
		return nil, client.TestData.ListErr
	}

	return client.TestData.Containers, nil
}

// InspectContainer returns the preconfigured inspection for the container.
func (client MockClient) InspectContainer(
	_ context.Context,
	containerID types.ContainerID,
) (types.ContainerInspection, error) {
	client.record("Inspect:" + string(containerID))

	if err := client.TestData.InspectErr[containerID]; err != nil {
		return types.ContainerInspection{}, err
	}

	return client.TestData.Inspections[containerID], nil
}

// RemoveContainer records the removal.
func (client MockClient) RemoveContainer(_ context.Context, containerID types.ContainerID) error {
	client.record("Remove:" + string(containerID))

	return client.TestData.RemoveErr[containerID]
}

// CreateContainer records the spec and returns a sequential ID.
func (client MockClient) CreateContainer(_ context.Context, spec types.RecreateSpec) (types.ContainerID, error) {
	client.record("Create:" + spec.Image)

	if client.TestData.CreateErr != nil {
		return "", client.TestData.CreateErr
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	client.TestData.Created = append(client.TestData.Created, spec)
	client.TestData.created++

	return types.ContainerID(fmt.Sprintf("new-%d", client.TestData.created)), nil
}

// StartContainer records the start.
func (client MockClient) StartContainer(_ context.Context, containerID types.ContainerID) error {
	client.record("Start:" + string(containerID))

	return client.TestData.StartErr
}

// StreamEvents returns closed channels; reconciliation never subscribes.
func (client MockClient) StreamEvents(_ context.Context) (<-chan types.TagEvent, <-chan error) {
	events := make(chan types.TagEvent)
	errs := make(chan error, 1)

	close(events)
	close(errs)

	return events, errs
}

// GetVersion returns a mock Docker API client version.
func (client MockClient) GetVersion() string {
	return "1.51"
}
