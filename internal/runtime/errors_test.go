package runtime

import (
	"errors"
	"testing"
)

func TestMapErrPortConflict(t *testing.T) {
	raw := errors.New(`Error response from daemon: driver failed programming external connectivity: Bind for 0.0.0.0:8000 failed: port is already allocated`)

	err := mapErr(raw)
	if !errors.Is(err, ErrPortConflict) {
		t.Fatalf("err = %v, want ErrPortConflict", err)
	}
}

func TestMapErrAddressInUse(t *testing.T) {
	err := mapErr(errors.New("listen tcp4 0.0.0.0:8000: bind: address already in use"))
	if !errors.Is(err, ErrPortConflict) {
		t.Fatalf("err = %v, want ErrPortConflict", err)
	}
}

func TestMapErrPermission(t *testing.T) {
	err := mapErr(errors.New("Got permission denied while trying to connect to the Docker daemon socket"))
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("err = %v, want ErrPermission", err)
	}
}

func TestMapErrPassthrough(t *testing.T) {
	raw := errors.New("no such image")
	if err := mapErr(raw); err != raw {
		t.Fatalf("err = %v, want the original error untouched", err)
	}
}

func TestMapErrNil(t *testing.T) {
	if err := mapErr(nil); err != nil {
		t.Fatalf("mapErr(nil) = %v, want nil", err)
	}
}

func TestNormalizeReference(t *testing.T) {
	cases := map[string]string{
		"nginx":            "docker.io/library/nginx:latest",
		"nginx:1.27":       "docker.io/library/nginx:1.27",
		"ghcr.io/a/b:v1":   "ghcr.io/a/b:v1",
		"example.com/x/y":  "example.com/x/y:latest",
	}

	for in, want := range cases {
		got, err := normalizeReference(in)
		if err != nil {
			t.Fatalf("normalizeReference(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("normalizeReference(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := normalizeReference("NGINX::bad"); err == nil {
		t.Fatal("normalizeReference accepted a malformed reference")
	}
}
