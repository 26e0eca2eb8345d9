package container

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerNat "github.com/docker/go-connections/nat"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// defaultProtocol is used for exposed ports without a protocol.
const defaultProtocol = "tcp"

var supportedProtocols = []string{"tcp", "udp", "sctp"}

// newCreateConfig translates a recreate spec into Docker create configuration.
//
// Every listed port is exposed with its protocol. Only ports with a non-zero public
// port receive a host binding. Volume destinations become anonymous volume entries
// and binds are passed through in order.
//
// Parameters:
//   - spec: Recreate spec built from the old container.
//
// Returns:
//   - *dockerContainer.Config: Container configuration.
//   - *dockerContainer.HostConfig: Host configuration.
//   - error: Non-nil if a port cannot be converted.
func newCreateConfig(spec types.RecreateSpec) (*dockerContainer.Config, *dockerContainer.HostConfig, error) {
	exposed := dockerNat.PortSet{}
	bindings := dockerNat.PortMap{}
	protocols := make(map[uint16]string, len(spec.Ports))

	for _, port := range spec.Ports {
		proto := port.Protocol
		if proto == "" {
			proto = defaultProtocol
		}

		if !slices.Contains(supportedProtocols, proto) {
			return nil, nil, fmt.Errorf("%w: %d/%s: unsupported protocol", errInvalidPort, port.Port, proto)
		}

		natPort, err := dockerNat.NewPort(proto, strconv.FormatUint(uint64(port.Port), 10))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %d/%s: %w", errInvalidPort, port.Port, proto, err)
		}

		exposed[natPort] = struct{}{}
		protocols[port.Port] = proto
	}

	for _, private := range sortedPorts(spec.PortBindings) {
		public := spec.PortBindings[private]
		if public == 0 {
			continue
		}

		proto, ok := protocols[private]
		if !ok {
			proto = defaultProtocol
		}

		natPort, err := dockerNat.NewPort(proto, strconv.FormatUint(uint64(private), 10))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %d/%s: %w", errInvalidPort, private, proto, err)
		}

		exposed[natPort] = struct{}{}
		bindings[natPort] = []dockerNat.PortBinding{
			{HostIP: spec.PortHostIPs[private], HostPort: strconv.FormatUint(uint64(public), 10)},
		}
	}

	volumes := make(map[string]struct{}, len(spec.VolumeDestinations))
	for _, destination := range spec.VolumeDestinations {
		volumes[destination] = struct{}{}
	}

	config := &dockerContainer.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: exposed,
		Volumes:      volumes,
	}

	hostConfig := &dockerContainer.HostConfig{
		Binds:        spec.VolumeBinds,
		PortBindings: bindings,
		ExtraHosts:   extraHostList(spec.ExtraHosts),
	}

	logrus.WithFields(logrus.Fields{
		"image":         spec.Image,
		"exposed_ports": len(exposed),
		"port_bindings": len(bindings),
		"volumes":       len(volumes),
		"binds":         len(spec.VolumeBinds),
		"extra_hosts":   len(hostConfig.ExtraHosts),
		"env_variables": len(spec.Env),
	}).Debug("Built create configuration")

	return config, hostConfig, nil
}

// extraHostList renders a host to IP map as "host:ip" entries sorted by host.
func extraHostList(hosts map[string]string) []string {
	if len(hosts) == 0 {
		return nil
	}

	names := make([]string, 0, len(hosts))
	for host := range hosts {
		names = append(names, host)
	}

	slices.Sort(names)

	entries := make([]string, 0, len(names))
	for _, host := range names {
		entries = append(entries, host+":"+hosts[host])
	}

	return entries
}

// sortedPorts returns the keys of a port map in ascending order.
func sortedPorts(ports map[uint16]uint16) []uint16 {
	keys := make([]uint16, 0, len(ports))
	for port := range ports {
		keys = append(keys, port)
	}

	slices.Sort(keys)

	return keys
}
