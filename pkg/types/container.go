package types

import "strings"

// ContainerID is a hash string for a container instance.
type ContainerID string

// ShortID returns the 12-character short version of a container ID.
//
// Returns:
//   - string: Shortened ID without "sha256:" prefix.
func (id ContainerID) ShortID() string {
	return shortID(string(id))
}

// shortID shortens a hash string to 12 characters, skipping a "sha256:" prefix.
func shortID(longID string) string {
	prefixSep := strings.IndexRune(longID, ':')
	offset := 0
	length := 12

	if prefixSep >= 0 {
		if longID[0:prefixSep] == "sha256" {
			offset = prefixSep + 1
		} else {
			length += prefixSep + 1
		}
	}

	if len(longID) >= offset+length {
		return longID[offset : offset+length]
	}

	return longID
}

// Port is a port definition as reported by the container list call.
//
// PublicPort is zero when the private port is not published on the host.
type Port struct {
	IP          string
	PrivatePort uint16
	PublicPort  uint16
	Type        string
}

// RunningContainer is a read-only snapshot of a running container taken from the list call.
type RunningContainer struct {
	ID    ContainerID
	Names []string
	Image string // Image reference as listed; matching uses ContainerInspection.Image.
	Ports []Port // Original order as reported by the runtime.
}

// Name returns the first listed name without its leading slash, or the short ID.
func (c RunningContainer) Name() string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}

	return c.ID.ShortID()
}

// Mount is a single mount point of an inspected container.
type Mount struct {
	Source      string
	Destination string
}

// ContainerInspection holds the subset of the inspect response needed to recreate a container.
type ContainerInspection struct {
	ID         ContainerID
	Name       string
	Image      string   // Config.Image, the reference the container was created from.
	Env        []string // "KEY=VALUE" entries.
	Mounts     []Mount
	ExtraHosts []string // "host:ip" entries.
}
