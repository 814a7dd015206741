package runtime

import (
	"context"

	"github.com/docker/docker/client"
	"github.com/hashicorp/go-hclog"
)

// Manages the engine client and provides image and container operations.
type Runtime struct {
	cli *client.Client // Engine API client over the local socket.
	log hclog.Logger
}

// Basic facts about the engine, recorded by init and used to detect a
// changed or missing engine on later runs.
type Info struct {
	APIVersion string `json:"api_version"`
	OS         string `json:"os"`
}

// Creates a runtime connected to the engine socket.
//
// An empty host uses the environment defaults (DOCKER_HOST or the
// platform socket). API version negotiation keeps the client usable
// against older engines.
func New(host string) (*Runtime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, mapErr(err)
	}

	return &Runtime{
		cli: cli,
		log: hclog.Default().Named("runtime"),
	}, nil
}

// Closes the engine client connection.
func (rt *Runtime) Close() error {
	return rt.cli.Close()
}

// Verifies the engine is reachable and returns its negotiated identity.
func (rt *Runtime) Ping(ctx context.Context) (Info, error) {
	pong, err := rt.cli.Ping(ctx)
	if err != nil {
		return Info{}, mapErr(err)
	}

	info := Info{
		APIVersion: rt.cli.ClientVersion(),
		OS:         pong.OSType,
	}
	rt.log.Debug("engine reachable", "api_version", info.APIVersion, "os", info.OS)
	return info, nil
}
