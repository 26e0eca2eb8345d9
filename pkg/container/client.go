package container

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerClient "github.com/docker/docker/client"

	"github.com/nicholas-fedor/tagreload/internal/util"
	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// client is the concrete implementation of the types.Client interface.
//
// It wraps the Docker API client.
type client struct {
	api dockerClient.APIClient
}

// ClientOptions configures the connection to the Docker daemon.
//
// An empty Host selects the local socket. TLS is only used for remote hosts with TLSVerify set.
type ClientOptions struct {
	Host              string // e.g. "tcp://10.0.0.5:2376"; empty means the local socket.
	TLSVerify         bool   // Use TLS with certificates from CertPath.
	CertPath          string // Directory holding ca.pem, cert.pem and key.pem.
	SkipHostnameCheck bool   // Verify the chain but not the daemon hostname.
	APIVersion        string // Fixed API version; empty negotiates with the daemon.
}

// NewClient initializes a new Client instance for Docker API interactions.
//
// The connection mode is chosen from the options: a remote host (optionally with TLS)
// when Host is set, the local socket otherwise. The daemon is pinged once so that
// connection problems surface at startup.
//
// Parameters:
//   - ctx: Context for the initial ping.
//   - opts: Connection options.
//
// Returns:
//   - types.Client: Initialized client instance.
//   - error: Non-nil if the client cannot be created or the daemon is unreachable.
func NewClient(ctx context.Context, opts ClientOptions) (types.Client, error) {
	clientOpts, err := connectionOpts(opts)
	if err != nil {
		return nil, err
	}

	cli, err := dockerClient.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateClientFailed, err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		logrus.WithError(err).
			WithField("docker_host", cli.DaemonHost()).
			Debug("Docker daemon ping failed")

		return nil, fmt.Errorf("%w: %w", errPingFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"docker_host":    cli.DaemonHost(),
		"client_version": cli.ClientVersion(),
	}).Debug("Initialized Docker client")

	return client{api: cli}, nil
}

// connectionOpts translates ClientOptions into Docker client options.
func connectionOpts(opts ClientOptions) ([]dockerClient.Opt, error) {
	clientOpts := []dockerClient.Opt{}

	if opts.APIVersion != "" {
		clientOpts = append(clientOpts, dockerClient.WithVersion(strings.Trim(opts.APIVersion, "\"")))
	} else {
		clientOpts = append(clientOpts, dockerClient.WithAPIVersionNegotiation())
	}

	if opts.Host == "" {
		logrus.WithField("docker_host", dockerClient.DefaultDockerHost).
			Debug("No remote host configured, using local socket")

		return append(clientOpts, dockerClient.WithHost(dockerClient.DefaultDockerHost)), nil
	}

	if opts.TLSVerify {
		tlsConfig, err := newTLSConfig(opts.CertPath, opts.SkipHostnameCheck)
		if err != nil {
			return nil, err
		}

		if opts.SkipHostnameCheck {
			logrus.WithField("docker_host", opts.Host).
				Warn("TLS hostname verification of the Docker daemon is disabled")
		}

		httpClient := &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
			// Event streams are long-lived; no overall client timeout.
			Timeout: 0,
		}
		clientOpts = append(clientOpts, dockerClient.WithHTTPClient(httpClient))
	}

	return append(clientOpts, dockerClient.WithHost(opts.Host)), nil
}

// ListContainers retrieves the containers currently running on the host.
//
// Returns:
//   - []types.RunningContainer: Running containers in the order reported by the daemon.
//   - error: Non-nil if listing fails, nil on success.
func (c client) ListContainers(ctx context.Context) ([]types.RunningContainer, error) {
	containers, err := c.api.ContainerList(ctx, dockerContainer.ListOptions{})
	if err != nil {
		logrus.WithError(err).Debug("Failed to list containers")

		return nil, fmt.Errorf("%w: %w", errListContainersFailed, err)
	}

	running := make([]types.RunningContainer, 0, len(containers))

	for _, summary := range containers {
		ports := make([]types.Port, 0, len(summary.Ports))
		for _, port := range summary.Ports {
			ports = append(ports, types.Port{
				IP:          port.IP,
				PrivatePort: port.PrivatePort,
				PublicPort:  port.PublicPort,
				Type:        port.Type,
			})
		}

		running = append(running, types.RunningContainer{
			ID:    types.ContainerID(summary.ID),
			Names: summary.Names,
			Image: summary.Image,
			Ports: ports,
		})
	}

	logrus.WithField("count", len(running)).Debug("Listed running containers")

	return running, nil
}

// InspectContainer fetches the configuration of a single container.
//
// Parameters:
//   - ctx: Context for the API call.
//   - containerID: ID of the container to inspect.
//
// Returns:
//   - types.ContainerInspection: Image, environment, mounts and extra hosts of the container.
//   - error: Non-nil if inspection fails; a missing container keeps its not-found classification.
func (c client) InspectContainer(
	ctx context.Context,
	containerID types.ContainerID,
) (types.ContainerInspection, error) {
	clog := logrus.WithField("container_id", containerID.ShortID())

	info, err := c.api.ContainerInspect(ctx, string(containerID))
	if err != nil {
		clog.WithError(err).Debug("Failed to inspect container")

		return types.ContainerInspection{}, fmt.Errorf("%w: %w", errInspectContainerFailed, err)
	}

	if info.ContainerJSONBase == nil || info.Config == nil || info.HostConfig == nil {
		return types.ContainerInspection{}, fmt.Errorf("%w: %s", errNoContainerConfig, containerID)
	}

	mounts := make([]types.Mount, 0, len(info.Mounts))
	for _, mount := range info.Mounts {
		mounts = append(mounts, types.Mount{
			Source:      mount.Source,
			Destination: mount.Destination,
		})
	}

	inspection := types.ContainerInspection{
		ID:         types.ContainerID(info.ID),
		Name:       util.NormalizeContainerName(info.Name),
		Image:      info.Config.Image,
		Env:        info.Config.Env,
		Mounts:     mounts,
		ExtraHosts: info.HostConfig.ExtraHosts,
	}

	clog.WithFields(logrus.Fields{
		"container": inspection.Name,
		"image":     inspection.Image,
	}).Debug("Inspected container")

	return inspection, nil
}

// RemoveContainer force-removes a container, killing it first if it is running.
//
// Parameters:
//   - ctx: Context for the API call.
//   - containerID: ID of the container to remove.
//
// Returns:
//   - error: Non-nil if removal fails, nil on success.
func (c client) RemoveContainer(ctx context.Context, containerID types.ContainerID) error {
	clog := logrus.WithField("container_id", containerID.ShortID())

	if err := c.api.ContainerRemove(ctx, string(containerID), dockerContainer.RemoveOptions{Force: true}); err != nil {
		clog.WithError(err).Debug("Failed to remove container")

		return fmt.Errorf("%w: %w", errRemoveContainerFailed, err)
	}

	clog.Debug("Removed container")

	return nil
}

// CreateContainer creates a new container from a recreate spec.
//
// Parameters:
//   - ctx: Context for the API call.
//   - spec: Configuration of the replacement container.
//
// Returns:
//   - types.ContainerID: ID of the created container.
//   - error: Non-nil if the spec is invalid or creation fails.
func (c client) CreateContainer(ctx context.Context, spec types.RecreateSpec) (types.ContainerID, error) {
	clog := logrus.WithFields(logrus.Fields{
		"image":     spec.Image,
		"container": spec.Name,
	})

	config, hostConfig, err := newCreateConfig(spec)
	if err != nil {
		return "", err
	}

	created, err := c.api.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if err != nil {
		clog.WithError(err).Debug("Failed to create container")

		return "", fmt.Errorf("%w: %w", errCreateContainerFailed, err)
	}

	for _, warning := range created.Warnings {
		clog.WithField("warning", warning).Warn("Docker reported a warning while creating container")
	}

	newID := types.ContainerID(created.ID)
	clog.WithField("new_id", newID.ShortID()).Debug("Created container")

	return newID, nil
}

// StartContainer starts a created container.
//
// Parameters:
//   - ctx: Context for the API call.
//   - containerID: ID of the container to start.
//
// Returns:
//   - error: Non-nil if starting fails, nil on success.
func (c client) StartContainer(ctx context.Context, containerID types.ContainerID) error {
	clog := logrus.WithField("container_id", containerID.ShortID())

	if err := c.api.ContainerStart(ctx, string(containerID), dockerContainer.StartOptions{}); err != nil {
		clog.WithError(err).Debug("Failed to start container")

		return fmt.Errorf("%w: %w", errStartContainerFailed, err)
	}

	clog.Debug("Started container")

	return nil
}

// GetVersion returns the client's API version.
//
// Returns:
//   - string: Docker API version (e.g., "1.51").
func (c client) GetVersion() string {
	return strings.Trim(c.api.ClientVersion(), "\"")
}
