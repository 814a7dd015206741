package runtime

import (
	"fmt"
	"strconv"

	"github.com/docker/go-connections/nat"
)

// One internal/external port pair to publish.
type PortSpec struct {
	Internal int
	External int
	Protocol string // "tcp" or "udp"
}

// Converts port specs into the engine's exposed-port set and host
// binding map.
//
// Several external ports may map to the same internal port; the bindings
// for a shared internal port accumulate.
func portBindings(ports []PortSpec) (nat.PortSet, nat.PortMap, error) {
	if len(ports) == 0 {
		return nil, nil, nil
	}

	exposed := make(nat.PortSet, len(ports))
	bindings := make(nat.PortMap, len(ports))

	for _, p := range ports {
		port, err := nat.NewPort(p.Protocol, strconv.Itoa(p.Internal))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port mapping %d/%s: %w", p.Internal, p.Protocol, err)
		}

		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{
			HostPort: strconv.Itoa(p.External),
		})
	}

	return exposed, bindings, nil
}
