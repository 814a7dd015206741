package runtime

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Desired shape of a container to create.
type ContainerSpec struct {
	Name     string
	Image    string
	Platform *ocispec.Platform
	Ports    []PortSpec
}

// Live facts about a container, as reported by the engine.
type ContainerStatus struct {
	ID      string
	Name    string
	ImageID string
	Running bool
}

// Seconds the engine waits before killing a container on stop.
var stopTimeoutSeconds = 10

// Creates and starts a container.
//
// Port bindings are published on creation. If the engine accepts the
// container but refuses to start it (a bound external port surfaces
// here), the half-created container is removed so a retry starts clean.
func (rt *Runtime) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	exposed, bindings, err := portBindings(spec.Ports)
	if err != nil {
		return "", err
	}

	resp, err := rt.cli.ContainerCreate(ctx,
		&container.Config{
			Image:        spec.Image,
			ExposedPorts: exposed,
		},
		&container.HostConfig{
			PortBindings: bindings,
		},
		nil, spec.Platform, spec.Name)
	if err != nil {
		return "", mapErr(err)
	}

	if err := rt.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		rt.removeQuietly(ctx, resp.ID)
		return "", mapErr(err)
	}

	rt.log.Debug("container started", "name", spec.Name, "id", resp.ID)
	return resp.ID, nil
}

// Queries a container by ID. The boolean reports whether it still exists.
func (rt *Runtime) InspectContainer(ctx context.Context, id string) (ContainerStatus, bool, error) {
	insp, err := rt.cli.ContainerInspect(ctx, id)
	if client.IsErrNotFound(err) {
		return ContainerStatus{}, false, nil
	}
	if err != nil {
		return ContainerStatus{}, false, mapErr(err)
	}

	status := ContainerStatus{
		ID:      insp.ID,
		ImageID: insp.Image,
		Running: insp.State != nil && insp.State.Running,
	}
	if insp.Name != "" {
		// The engine reports names with a leading slash.
		status.Name = insp.Name[1:]
	}

	return status, true, nil
}

// Stops and removes a container. Removing an absent container is a no-op.
func (rt *Runtime) RemoveContainer(ctx context.Context, id string) error {
	err := rt.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &stopTimeoutSeconds})
	if err != nil && !client.IsErrNotFound(err) {
		return mapErr(err)
	}

	err = rt.cli.ContainerRemove(ctx, id, types.ContainerRemoveOptions{Force: true})
	if client.IsErrNotFound(err) {
		return nil
	}
	if err != nil {
		return mapErr(err)
	}

	rt.log.Debug("container removed", "id", id)
	return nil
}

// Removes a half-created container during error cleanup.
func (rt *Runtime) removeQuietly(ctx context.Context, id string) {
	if err := rt.cli.ContainerRemove(ctx, id, types.ContainerRemoveOptions{Force: true}); err != nil && !client.IsErrNotFound(err) {
		rt.log.Warn("failed to clean up container", "id", id, "error", err)
	}
}
