// Package reconcile executes plans against the container engine.
//
// A [Reconciler] walks a plan front to back, issuing engine calls through
// a narrow [Engine] interface and persisting state after every mutation,
// so an aborted run leaves an accurate record of what exists. Refresh
// prunes state entries whose live objects have disappeared and taints
// containers that exist but no longer run, which is what lets plan
// report drift as creates and replaces.
//
// Example usage:
//
//	r := reconcile.New(rt, store.Persist)
//	if _, err := r.Refresh(ctx, st); err != nil {
//	    return err
//	}
//
//	p := plan.Diff(cfg, st)
//	if err := r.Apply(ctx, p, st); err != nil {
//	    return err
//	}
package reconcile
