// Package framework provides the infrastructure for tagreload end-to-end testing.
// It manages Docker containers and images through testcontainers and the docker CLI.
package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// dockerSocket is bind mounted into the tagreload container.
const dockerSocket = "/var/run/docker.sock"

// stopTimeout bounds container shutdown during cleanup.
const stopTimeout = 30 * time.Second

// tagreloadDockerfile builds the binary from the repository root.
const tagreloadDockerfile = `FROM golang:1.25-alpine AS build
WORKDIR /src
COPY . .
RUN CGO_ENABLED=0 go build -o /tagreload .

FROM alpine:3
COPY --from=build /tagreload /tagreload
ENTRYPOINT ["/tagreload"]
`

// E2EFramework manages the lifecycle of end-to-end tests for tagreload.
type E2EFramework struct {
	ctx          context.Context
	image        string
	cleanupFuncs []func() error
}

// NewE2EFramework creates a new end-to-end testing framework for the given tagreload image.
func NewE2EFramework(tagreloadImage string) (*E2EFramework, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, fmt.Errorf("docker CLI not available: %w", err)
	}

	return &E2EFramework{
		ctx:          context.Background(),
		image:        tagreloadImage,
		cleanupFuncs: []func() error{},
	}, nil
}

func (f *E2EFramework) addCleanupFunc(cleanup func() error) {
	f.cleanupFuncs = append(f.cleanupFuncs, cleanup)
}

// Cleanup performs teardown of all test resources, most recent first.
func (f *E2EFramework) Cleanup() error {
	var errs []error

	for i := len(f.cleanupFuncs) - 1; i >= 0; i-- {
		if err := f.cleanupFuncs[i](); err != nil {
			errs = append(errs, err)
		}
	}

	f.cleanupFuncs = nil

	return errors.Join(errs...)
}

// CreateContainer creates and starts a container. It is registered for cleanup.
func (f *E2EFramework) CreateContainer(
	req testcontainers.ContainerRequest,
) (testcontainers.Container, error) {
	ctr, err := testcontainers.GenericContainer(f.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	f.addCleanupFunc(func() error {
		timeout := stopTimeout

		return ctr.Stop(f.ctx, &timeout)
	})

	return ctr, nil
}

// CreateTagreloadContainer starts tagreload with the Docker socket mounted and waits
// until it is watching for events.
func (f *E2EFramework) CreateTagreloadContainer(args []string) (testcontainers.Container, error) {
	var waitStrategy wait.Strategy = wait.ForLog("Watching for image tag events").
		WithStartupTimeout(30 * time.Second)

	for _, arg := range args {
		if arg == "--help" {
			waitStrategy = wait.ForExit().WithExitTimeout(10 * time.Second)

			break
		}
	}

	return f.CreateContainer(testcontainers.ContainerRequest{
		Image:      f.image,
		Cmd:        args,
		WaitingFor: waitStrategy,
		HostConfigModifier: func(hostConfig *container.HostConfig) {
			hostConfig.Binds = append(hostConfig.Binds, dockerSocket+":"+dockerSocket)
		},
	})
}

// RunTestWithCleanup runs a test function and always cleans up afterwards.
func (f *E2EFramework) RunTestWithCleanup(t *testing.T, testFunc func() error) {
	t.Helper()

	defer func() {
		if err := f.Cleanup(); err != nil {
			t.Logf("Cleanup failed: %v", err)
		}
	}()

	if err := testFunc(); err != nil {
		t.Fatalf("Test failed: %v", err)
	}
}

// WaitForLog waits for a specific log message in a container.
func (f *E2EFramework) WaitForLog(
	ctr testcontainers.Container,
	logMessage string,
	timeout time.Duration,
) error {
	return wait.ForLog(logMessage).WithStartupTimeout(timeout).WaitUntilReady(f.ctx, ctr)
}

// GetContainerLogs retrieves logs from a container for debugging.
func (f *E2EFramework) GetContainerLogs(ctr testcontainers.Container) (string, error) {
	reader, err := ctr.Logs(f.ctx)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	return string(logs), nil
}

// PullImage makes sure an image is present locally.
func (f *E2EFramework) PullImage(image string) error {
	return f.docker("pull", image)
}

// TagImage tags source as target, which emits an image tag event.
func (f *E2EFramework) TagImage(source, target string) error {
	if err := f.docker("tag", source, target); err != nil {
		return err
	}

	f.addCleanupFunc(func() error {
		return f.docker("rmi", target)
	})

	return nil
}

// RemoveContainerOnCleanup force-removes a container by name during cleanup.
// Replacement containers are not tracked by testcontainers.
func (f *E2EFramework) RemoveContainerOnCleanup(name string) {
	f.addCleanupFunc(func() error {
		return f.docker("rm", "-f", name)
	})
}

// InspectField returns a docker inspect template value for a container.
func (f *E2EFramework) InspectField(name, format string) (string, error) {
	output, err := exec.CommandContext(f.ctx, "docker", "inspect", "-f", format, name).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w, output: %s", name, err, string(output))
	}

	return strings.TrimSpace(string(output)), nil
}

// BuildTagreloadImage builds the tagreload image from the repository at contextDir.
func (f *E2EFramework) BuildTagreloadImage(contextDir, name, tag string) error {
	cmd := exec.CommandContext(f.ctx, "docker", "build", "-t", name+":"+tag, "-f", "-", contextDir)
	cmd.Stdin = strings.NewReader(tagreloadDockerfile)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to build image: %w, output: %s", err, string(output))
	}

	return nil
}

// LogTestInfo logs useful information about the current test environment.
func (f *E2EFramework) LogTestInfo() {
	log.Printf("E2E Framework initialized:")
	log.Printf("  - tagreload image: %s", f.image)
}

func (f *E2EFramework) docker(args ...string) error {
	output, err := exec.CommandContext(f.ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker %s failed: %w, output: %s", args[0], err, string(output))
	}

	return nil
}
