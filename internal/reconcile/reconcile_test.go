package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/moorhq/moor/internal/config"
	"github.com/moorhq/moor/internal/plan"
	"github.com/moorhq/moor/internal/runtime"
	"github.com/moorhq/moor/internal/state"
)

// In-memory engine standing in for the Docker runtime. It enforces the
// engine contracts the reconciler has to respect: container names stay
// exclusive even for stopped containers, and an image referenced by any
// container refuses removal.
type fakeEngine struct {
	images     map[string]runtime.ImageSummary   // keyed by reference
	imagesByID map[string]runtime.ImageSummary   // keyed by ID
	containers map[string]runtime.ContainerStatus // keyed by ID

	pulled            []string
	removedImages     []string
	removedContainers []string

	nextContainer int
	createErr     error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		images:     make(map[string]runtime.ImageSummary),
		imagesByID: make(map[string]runtime.ImageSummary),
		containers: make(map[string]runtime.ContainerStatus),
	}
}

func (e *fakeEngine) EnsureImage(_ context.Context, ref, _ string) (runtime.ImageSummary, error) {
	if img, ok := e.images[ref]; ok {
		return img, nil
	}
	img := runtime.ImageSummary{ID: digest.FromString(ref), Reference: ref}
	e.images[ref] = img
	e.imagesByID[img.ID.String()] = img
	e.pulled = append(e.pulled, ref)
	return img, nil
}

func (e *fakeEngine) LookupImage(_ context.Context, refOrID string) (runtime.ImageSummary, bool, error) {
	if img, ok := e.imagesByID[refOrID]; ok {
		return img, true, nil
	}
	img, ok := e.images[refOrID]
	return img, ok, nil
}

func (e *fakeEngine) RemoveImage(_ context.Context, id string) error {
	for _, ctr := range e.containers {
		if ctr.ImageID == id {
			return fmt.Errorf("conflict: unable to delete %s (cannot be forced) - image is being used by container %s", id, ctr.ID)
		}
	}
	img, ok := e.imagesByID[id]
	if ok {
		delete(e.images, img.Reference)
		delete(e.imagesByID, id)
	}
	e.removedImages = append(e.removedImages, id)
	return nil
}

func (e *fakeEngine) CreateContainer(_ context.Context, spec runtime.ContainerSpec) (string, error) {
	if e.createErr != nil {
		return "", e.createErr
	}
	for _, ctr := range e.containers {
		// Stopped containers hold their name too.
		if ctr.Name == spec.Name {
			return "", fmt.Errorf("Conflict. The container name %q is already in use by container %q", "/"+spec.Name, ctr.ID)
		}
	}
	e.nextContainer++
	id := fmt.Sprintf("cid-%d", e.nextContainer)
	e.containers[id] = runtime.ContainerStatus{ID: id, Name: spec.Name, ImageID: spec.Image, Running: true}
	return id, nil
}

func (e *fakeEngine) InspectContainer(_ context.Context, id string) (runtime.ContainerStatus, bool, error) {
	status, ok := e.containers[id]
	return status, ok, nil
}

func (e *fakeEngine) RemoveContainer(_ context.Context, id string) error {
	delete(e.containers, id)
	e.removedContainers = append(e.removedContainers, id)
	return nil
}

func testConfig() *config.File {
	return &config.File{
		Images: []*config.Image{
			{Label: "nginx", Name: "nginx:1.27"},
		},
		Containers: []*config.Container{
			{Label: "web", Image: "nginx", Name: "tutorial",
				Ports: []*config.Port{{Internal: 80, External: 8000}}},
		},
	}
}

func testReconciler(e Engine) (*Reconciler, *int) {
	persists := 0
	r := New(e, func(*state.State) error {
		persists++
		return nil
	})
	return r, &persists
}

func TestApplyCreatesEverything(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	r, persists := testReconciler(engine)

	cfg := testConfig()
	st := state.New()

	if err := r.Apply(ctx, plan.Diff(cfg, st), st); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(engine.pulled) != 1 || engine.pulled[0] != "nginx:1.27" {
		t.Fatalf("pulled = %v, want [nginx:1.27]", engine.pulled)
	}
	if len(engine.containers) != 1 {
		t.Fatalf("containers = %d, want 1", len(engine.containers))
	}
	if *persists != 2 {
		t.Fatalf("persists = %d, want 2 (one per resource)", *persists)
	}

	imgRes := st.Resources["image.nginx"]
	if imgRes == nil || imgRes.ID == "" {
		t.Fatalf("image.nginx not recorded: %+v", imgRes)
	}
	ctrRes := st.Resources["container.web"]
	if ctrRes == nil || ctrRes.Container.ImageID != imgRes.ID {
		t.Fatalf("container.web not linked to image: %+v", ctrRes)
	}
	if ctrRes.Container.Ports[0].Protocol != "tcp" {
		t.Fatalf("recorded protocol = %q, want tcp", ctrRes.Container.Ports[0].Protocol)
	}
}

func TestApplyTwiceIsNoOp(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	r, _ := testReconciler(engine)

	cfg := testConfig()
	st := state.New()

	if err := r.Apply(ctx, plan.Diff(cfg, st), st); err != nil {
		t.Fatalf("first Apply: %v", err)
	}

	changed, err := r.Refresh(ctx, st)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if changed {
		t.Fatal("Refresh reported changes on a converged state")
	}
	second := plan.Diff(cfg, st)
	if !second.Empty() {
		t.Fatalf("second plan not empty: %d changes", len(second.Changes))
	}
	if len(engine.containers) != 1 {
		t.Fatalf("containers = %d after replan, want 1", len(engine.containers))
	}
}

func TestDestroyHonorsKeepLocally(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	r, _ := testReconciler(engine)

	cfg := testConfig()
	cfg.Images[0].KeepLocally = true
	st := state.New()

	if err := r.Apply(ctx, plan.Diff(cfg, st), st); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if err := r.Apply(ctx, plan.Diff(&config.File{}, st), st); err != nil {
		t.Fatalf("destroy Apply: %v", err)
	}

	if !st.Empty() {
		t.Fatalf("state not empty after destroy: %v", st.Resources)
	}
	if len(engine.removedContainers) != 1 {
		t.Fatalf("removed containers = %v, want one", engine.removedContainers)
	}
	if len(engine.removedImages) != 0 {
		t.Fatalf("removed images = %v, want none (keep_locally)", engine.removedImages)
	}
	if len(engine.images) != 1 {
		t.Fatal("kept image gone from engine")
	}
}

func TestImageChangeReplacesContainerAndPrunesImage(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	r, _ := testReconciler(engine)

	cfg := testConfig()
	st := state.New()
	if err := r.Apply(ctx, plan.Diff(cfg, st), st); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	oldImage := st.Resources["image.nginx"].ID
	oldContainer := st.Resources["container.web"].ID

	cfg.Images[0].Name = "nginx:1.28"
	if err := r.Apply(ctx, plan.Diff(cfg, st), st); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	if st.Resources["image.nginx"].ID == oldImage {
		t.Fatal("image ID unchanged after reference change")
	}
	if st.Resources["container.web"].ID == oldContainer {
		t.Fatal("container ID unchanged after image replace")
	}
	// The old image was in use until the container replace ran, so its
	// removal must have happened afterwards.
	if len(engine.removedImages) != 1 || engine.removedImages[0] != oldImage {
		t.Fatalf("removed images = %v, want the superseded %s", engine.removedImages, oldImage)
	}
	if _, left, _ := engine.LookupImage(ctx, oldImage); left {
		t.Fatal("superseded image left on the engine")
	}
	if len(engine.removedContainers) != 1 || engine.removedContainers[0] != oldContainer {
		t.Fatalf("removed containers = %v, want the old %s", engine.removedContainers, oldContainer)
	}
}

func TestApplyStopsOnFirstError(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	engine.createErr = errors.New("port is already allocated")
	r, _ := testReconciler(engine)

	cfg := testConfig()
	st := state.New()

	err := r.Apply(ctx, plan.Diff(cfg, st), st)
	if err == nil {
		t.Fatal("Apply succeeded, want container create failure")
	}

	// The image step completed and must be on record.
	if st.Resources["image.nginx"] == nil {
		t.Fatal("image created before the failure is missing from state")
	}
	if st.Resources["container.web"] != nil {
		t.Fatal("failed container ended up in state")
	}
}

func TestRefreshPrunesGoneObjects(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	r, _ := testReconciler(engine)

	st := state.New()
	st.Put("container.web", &state.Resource{
		Type: state.TypeContainer, Label: "web", ID: "vanished",
		Container: &state.ContainerAttrs{Name: "tutorial", ImageLabel: "nginx"},
	})

	changed, err := r.Refresh(ctx, st)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !changed {
		t.Fatal("Refresh did not report the pruned record")
	}
	if !st.Empty() {
		t.Fatal("gone container survived refresh")
	}
}

func TestRefreshTaintsStoppedContainer(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	engine.containers["cid-halted"] = runtime.ContainerStatus{ID: "cid-halted", Name: "tutorial", Running: false}
	r, _ := testReconciler(engine)

	st := state.New()
	st.Put("container.web", &state.Resource{
		Type: state.TypeContainer, Label: "web", ID: "cid-halted",
		Container: &state.ContainerAttrs{Name: "tutorial", ImageLabel: "nginx"},
	})

	changed, err := r.Refresh(ctx, st)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !changed {
		t.Fatal("Refresh did not report the taint")
	}

	res := st.Resources["container.web"]
	if res == nil {
		t.Fatal("stopped container pruned from state; its name is still held on the engine")
	}
	if !res.Tainted {
		t.Fatal("stopped container not tainted")
	}
}

func TestStoppedContainerIsReplaced(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	r, _ := testReconciler(engine)

	cfg := testConfig()
	st := state.New()
	if err := r.Apply(ctx, plan.Diff(cfg, st), st); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Stop the container out-of-band. It keeps its name on the engine.
	oldID := st.Resources["container.web"].ID
	halted := engine.containers[oldID]
	halted.Running = false
	engine.containers[oldID] = halted

	if _, err := r.Refresh(ctx, st); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	p := plan.Diff(cfg, st)
	if len(p.Changes) != 1 || p.Changes[0].Action != plan.Replace || p.Changes[0].Addr != "container.web" {
		t.Fatalf("plan = %v, want a single ± container.web", actionsOf(p))
	}

	if err := r.Apply(ctx, p, st); err != nil {
		t.Fatalf("replace Apply: %v", err)
	}

	newID := st.Resources["container.web"].ID
	if newID == oldID {
		t.Fatal("container ID unchanged after replace")
	}
	if st.Resources["container.web"].Tainted {
		t.Fatal("replacement container still tainted")
	}
	if !engine.containers[newID].Running {
		t.Fatal("replacement container not running")
	}
	if _, exists := engine.containers[oldID]; exists {
		t.Fatal("stopped container left on the engine")
	}
}

func actionsOf(p *plan.Plan) []string {
	var out []string
	for _, c := range p.Changes {
		out = append(out, string(c.Action)+" "+c.Addr)
	}
	return out
}
