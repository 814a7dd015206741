// Package plan computes and renders the change set between a declaration
// and the recorded state.
//
// Diff is pure: it reads a refreshed state snapshot and a validated
// declaration and produces an ordered list of changes. Ordering encodes
// the image-before-container dependency on the way up and its reverse on
// the way down. Execution lives in the reconcile package.
package plan
