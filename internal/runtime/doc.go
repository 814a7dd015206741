// Package runtime manages images and containers on a local Docker engine.
//
// A [Runtime] connects to the engine socket with API version negotiation
// and exposes the handful of operations the reconciler needs: ping,
// pull-if-absent, create-and-start with port bindings, inspect, and
// remove. Engine failures are mapped onto sentinel errors so callers can
// present the documented failure categories (unreachable socket, bound
// port, denied socket access) without knowing engine internals.
//
// Example usage:
//
//	rt, err := runtime.New("")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	img, err := rt.EnsureImage(ctx, "nginx:1.27", "")
//	if err != nil {
//	    return err
//	}
//
//	id, err := rt.CreateContainer(ctx, runtime.ContainerSpec{
//	    Name:  "tutorial",
//	    Image: img.Reference,
//	    Ports: []runtime.PortSpec{{Internal: 80, External: 8000, Protocol: "tcp"}},
//	})
package runtime
