package types

// ExposedPort is a private port exposed by a recreated container.
type ExposedPort struct {
	Port     uint16
	Protocol string // "tcp", "udp" or "sctp"; empty means "tcp".
}

// RecreateSpec is the configuration used to create a replacement container.
//
// It is built from a RunningContainer and its ContainerInspection and discarded after the create call.
type RecreateSpec struct {
	Image              string
	Name               string            // Empty lets the runtime pick a name.
	Ports              []ExposedPort     // Private ports in listing order.
	PortBindings       map[uint16]uint16 // Private port to public port; zero means not published.
	PortHostIPs        map[uint16]string // Private port to host address; absent means all interfaces.
	VolumeDestinations []string
	VolumeBinds        []string          // "source:destination" entries.
	ExtraHosts         map[string]string // Hostname to IP.
	Env                []string
}
