// Package paths centralizes filesystem locations used by moor.
//
// Workspace files (declaration, state, lock sidecar, engine fingerprint)
// live next to the declaration in the working directory. The optional
// global CLI configuration follows the XDG base directory spec.
package paths
