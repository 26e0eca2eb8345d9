package container

import (
	"errors"
)

// Errors for client construction in client.go and tls.go.
var (
	// errCreateClientFailed indicates the Docker API client could not be constructed.
	errCreateClientFailed = errors.New("failed to create docker client")
	// errPingFailed indicates the Docker daemon did not answer the initial ping.
	errPingFailed = errors.New("failed to reach docker daemon")
	// errLoadTLSConfigFailed indicates the TLS certificates could not be loaded.
	errLoadTLSConfigFailed = errors.New("failed to load docker TLS configuration")
	// errNoPeerCertificate indicates the daemon presented no certificate during the TLS handshake.
	errNoPeerCertificate = errors.New("docker daemon presented no certificate")
	// errVerifyPeerFailed indicates the daemon certificate chain could not be verified.
	errVerifyPeerFailed = errors.New("failed to verify docker daemon certificate chain")
)

// Errors for container operations in client.go.
var (
	// errListContainersFailed indicates a failure to list containers from the Docker host.
	errListContainersFailed = errors.New("failed to list containers")
	// errInspectContainerFailed indicates a failure to inspect a container's details.
	errInspectContainerFailed = errors.New("failed to inspect container")
	// errNoContainerConfig indicates an inspect response without Config or HostConfig.
	errNoContainerConfig = errors.New("inspect response lacks container configuration")
	// errRemoveContainerFailed indicates a failure to remove a container from the host.
	errRemoveContainerFailed = errors.New("failed to remove container")
	// errCreateContainerFailed indicates a failure to create a new container.
	errCreateContainerFailed = errors.New("failed to create container")
	// errStartContainerFailed indicates a failure to start a newly created container.
	errStartContainerFailed = errors.New("failed to start container")
)

// Errors for create configuration in recreate.go.
var (
	// errInvalidPort indicates a port or protocol in the spec could not be converted.
	errInvalidPort = errors.New("invalid port in recreate spec")
)

// Errors for event streaming in events.go.
var (
	// errEventStreamFailed indicates the daemon event stream ended or failed.
	errEventStreamFailed = errors.New("docker event stream interrupted")
)
