// Package state persists the mapping from declared resources to live
// engine object identifiers.
//
// The state file is JSON, written atomically beside the declaration and
// treated as opaque by users. A lineage UUID identifies the state's
// lifetime and a serial counts persisted writes. An advisory lock on a
// dedicated lock file, with a human-readable sidecar naming the holder,
// prevents concurrent invocations from interleaving writes.
package state
