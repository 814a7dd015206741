package runtime

import (
	"context"
	"fmt"
	"io"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/opencontainers/go-digest"
)

// An image present on the engine.
type ImageSummary struct {
	// Content-addressed engine identifier (sha256 digest).
	ID digest.Digest

	// Normalized reference the image was resolved from.
	Reference string
}

// Ensures the referenced image is present, pulling it when it is not.
//
// The reference is normalized under the Docker reference grammar (a bare
// "nginx" becomes "docker.io/library/nginx:latest") before the lookup and
// pull. Platform narrows the pull for multi-arch references and may be
// empty.
func (rt *Runtime) EnsureImage(ctx context.Context, ref, platform string) (ImageSummary, error) {
	normalized, err := normalizeReference(ref)
	if err != nil {
		return ImageSummary{}, err
	}

	if summary, ok, err := rt.LookupImage(ctx, normalized); err != nil {
		return ImageSummary{}, err
	} else if ok {
		rt.log.Debug("image already present", "reference", normalized, "id", summary.ID)
		return summary, nil
	}

	rt.log.Info("pulling image", "reference", normalized)

	rc, err := rt.cli.ImagePull(ctx, normalized, types.ImagePullOptions{Platform: platform})
	if err != nil {
		return ImageSummary{}, mapErr(err)
	}
	// The pull only completes once the progress stream is drained.
	_, copyErr := io.Copy(io.Discard, rc)
	rc.Close()
	if copyErr != nil {
		return ImageSummary{}, mapErr(copyErr)
	}

	summary, ok, err := rt.LookupImage(ctx, normalized)
	if err != nil {
		return ImageSummary{}, err
	}
	if !ok {
		return ImageSummary{}, fmt.Errorf("image %s not present after pull", normalized)
	}

	rt.log.Debug("image pulled", "reference", normalized, "id", summary.ID)
	return summary, nil
}

// Looks up an image by reference or ID. The boolean reports presence.
func (rt *Runtime) LookupImage(ctx context.Context, refOrID string) (ImageSummary, bool, error) {
	insp, _, err := rt.cli.ImageInspectWithRaw(ctx, refOrID)
	if client.IsErrNotFound(err) {
		return ImageSummary{}, false, nil
	}
	if err != nil {
		return ImageSummary{}, false, mapErr(err)
	}

	id, err := digest.Parse(insp.ID)
	if err != nil {
		return ImageSummary{}, false, fmt.Errorf("engine returned malformed image id %q: %w", insp.ID, err)
	}

	return ImageSummary{ID: id, Reference: refOrID}, true, nil
}

// Removes an image from the engine. Removing an absent image is a no-op.
func (rt *Runtime) RemoveImage(ctx context.Context, id string) error {
	_, err := rt.cli.ImageRemove(ctx, id, types.ImageRemoveOptions{})
	if client.IsErrNotFound(err) {
		return nil
	}
	if err != nil {
		return mapErr(err)
	}

	rt.log.Debug("image removed", "id", id)
	return nil
}

// Normalizes a reference to its fully qualified, tagged form.
func normalizeReference(ref string) (string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	return reference.TagNameOnly(named).String(), nil
}
