package actions

import "errors"

// Errors for extraction.
var (
	// errMalformedExtraHost indicates an extra host entry without a colon.
	errMalformedExtraHost = errors.New("malformed extra host entry")
)

// Errors for reload operations.
var (
	// errInvalidReference indicates the tag event does not name a valid image reference.
	errInvalidReference = errors.New("invalid image reference in tag event")
	// errListContainersFailed indicates a failure to list running containers.
	errListContainersFailed = errors.New("failed to list containers")
	// errBuildSpecFailed indicates the replacement configuration could not be derived.
	errBuildSpecFailed = errors.New("failed to build recreate spec")
	// errRemoveContainerFailed indicates a failure to remove the old container.
	errRemoveContainerFailed = errors.New("failed to remove container")
	// errCreateContainerFailed indicates a failure to create the replacement.
	errCreateContainerFailed = errors.New("failed to create container")
	// errStartContainerFailed indicates a failure to start the replacement.
	errStartContainerFailed = errors.New("failed to start container")
)
