package actions

import (
	"fmt"
	"net"
	"strings"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// dataVolumeSuffix marks mount sources that are not carried over to the replacement.
const dataVolumeSuffix = "_data"

// GetPortList returns the private port of each port definition in original order.
//
// Parameters:
//   - ports: Port definitions from the container list call.
//
// Returns:
//   - []types.ExposedPort: One entry per definition, with its protocol.
func GetPortList(ports []types.Port) []types.ExposedPort {
	list := make([]types.ExposedPort, 0, len(ports))
	for _, port := range ports {
		list = append(list, types.ExposedPort{Port: port.PrivatePort, Protocol: port.Type})
	}

	return list
}

// GetPortMapping maps each private port to its public port.
//
// Later definitions of the same private port overwrite earlier ones. A zero public
// port means the private port is not published.
func GetPortMapping(ports []types.Port) map[uint16]uint16 {
	mapping := make(map[uint16]uint16, len(ports))
	for _, port := range ports {
		mapping[port.PrivatePort] = port.PublicPort
	}

	return mapping
}

// GetPortHostIPs maps each published private port to the host address it is bound to.
//
// A port published on an unspecified address ("", "0.0.0.0", "::") or on more than
// one address has no entry, so the replacement publishes it on all interfaces.
func GetPortHostIPs(ports []types.Port) map[uint16]string {
	addresses := make(map[uint16]string, len(ports))
	unrestricted := make(map[uint16]bool)

	for _, port := range ports {
		if port.PublicPort == 0 {
			continue
		}

		if port.IP == "" || net.ParseIP(port.IP).IsUnspecified() {
			unrestricted[port.PrivatePort] = true

			continue
		}

		if address, seen := addresses[port.PrivatePort]; seen && address != port.IP {
			unrestricted[port.PrivatePort] = true

			continue
		}

		addresses[port.PrivatePort] = port.IP
	}

	for port := range unrestricted {
		delete(addresses, port)
	}

	return addresses
}

// GetHosts splits "host:ip" entries at the first colon.
//
// The ip part is kept verbatim, so IPv6 addresses survive. An entry without a colon is
// an error.
func GetHosts(extraHosts []string) (map[string]string, error) {
	hosts := make(map[string]string, len(extraHosts))

	for _, entry := range extraHosts {
		host, ip, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("%w: %q", errMalformedExtraHost, entry)
		}

		hosts[host] = ip
	}

	return hosts, nil
}

// GetVolumes returns the destinations of all mounts whose source does not end in "_data".
func GetVolumes(mounts []types.Mount) []string {
	volumes := make([]string, 0, len(mounts))

	for _, mount := range mounts {
		if strings.HasSuffix(mount.Source, dataVolumeSuffix) {
			continue
		}

		volumes = append(volumes, mount.Destination)
	}

	return volumes
}

// GetVolumeBinds returns "source:destination" for all mounts whose source does not end in "_data".
func GetVolumeBinds(mounts []types.Mount) []string {
	binds := make([]string, 0, len(mounts))

	for _, mount := range mounts {
		if strings.HasSuffix(mount.Source, dataVolumeSuffix) {
			continue
		}

		binds = append(binds, mount.Source+":"+mount.Destination)
	}

	return binds
}

// BuildRecreateSpec derives the configuration of a replacement container.
//
// Ports come from the list call; environment, mounts and extra hosts from the inspection.
// The function is pure: the same inputs always produce an equal spec.
//
// Parameters:
//   - image: Image reference for the replacement, the raw event name.
//   - running: Container snapshot from the list call.
//   - inspection: Inspection of the same container.
//   - preserveName: Reuse the old container name.
//
// Returns:
//   - types.RecreateSpec: Replacement configuration.
//   - error: Non-nil if an extra host entry is malformed.
func BuildRecreateSpec(
	image string,
	running types.RunningContainer,
	inspection types.ContainerInspection,
	preserveName bool,
) (types.RecreateSpec, error) {
	hosts, err := GetHosts(inspection.ExtraHosts)
	if err != nil {
		return types.RecreateSpec{}, err
	}

	spec := types.RecreateSpec{
		Image:              image,
		Ports:              GetPortList(running.Ports),
		PortBindings:       GetPortMapping(running.Ports),
		PortHostIPs:        GetPortHostIPs(running.Ports),
		VolumeDestinations: GetVolumes(inspection.Mounts),
		VolumeBinds:        GetVolumeBinds(inspection.Mounts),
		ExtraHosts:         hosts,
		Env:                inspection.Env,
	}

	if preserveName {
		spec.Name = inspection.Name
	}

	return spec, nil
}
