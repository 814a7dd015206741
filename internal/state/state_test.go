package state

import (
	"testing"
)

func TestNewState(t *testing.T) {
	st := New()
	if st.Version != FormatVersion {
		t.Fatalf("version = %d, want %d", st.Version, FormatVersion)
	}
	if st.Lineage == "" {
		t.Fatal("lineage is empty, want a fresh uuid")
	}
	if !st.Empty() {
		t.Fatal("new state is not empty")
	}
	if New().Lineage == st.Lineage {
		t.Fatal("two fresh states share a lineage")
	}
}

func TestAddresses(t *testing.T) {
	if got := ImageAddr("nginx"); got != "image.nginx" {
		t.Fatalf("ImageAddr = %q, want image.nginx", got)
	}
	if got := ContainerAddr("web"); got != "container.web" {
		t.Fatalf("ContainerAddr = %q, want container.web", got)
	}
}

func TestPutRemove(t *testing.T) {
	st := New()
	st.Put("image.nginx", &Resource{Type: TypeImage, Label: "nginx", ID: "sha256:abc"})

	if st.Empty() {
		t.Fatal("state empty after Put")
	}

	st.Remove("image.nginx")
	if !st.Empty() {
		t.Fatal("state not empty after Remove")
	}

	// Removing an absent address is a no-op.
	st.Remove("image.bogus")
}

func TestDeepCopyIndependence(t *testing.T) {
	st := New()
	st.Put("container.web", &Resource{
		Type:  TypeContainer,
		Label: "web",
		ID:    "cid-1",
		Container: &ContainerAttrs{
			Name:       "tutorial",
			ImageLabel: "nginx",
			ImageID:    "sha256:abc",
			Ports:      []PortAttrs{{Internal: 80, External: 8000, Protocol: "tcp"}},
		},
	})

	cp := st.DeepCopy()
	cp.Resources["container.web"].Container.Name = "mutated"
	cp.Resources["container.web"].Container.Ports[0].External = 9999
	cp.Remove("container.web")

	orig := st.Resources["container.web"]
	if orig == nil {
		t.Fatal("original lost its resource after copy mutation")
	}
	if orig.Container.Name != "tutorial" {
		t.Fatalf("original name = %q, want tutorial", orig.Container.Name)
	}
	if orig.Container.Ports[0].External != 8000 {
		t.Fatalf("original port = %d, want 8000", orig.Container.Ports[0].External)
	}
}
