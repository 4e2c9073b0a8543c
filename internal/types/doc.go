// Package types defines resolved types.
//
// A Type is a tagged value: Basic and Generic point at a registry symbol
// through the Symbol handle, Reference and Array wrap an element, and
// Placeholder stands for a generic parameter inside a generic body.
// Types are immutable; constructors enforce the structural invariants.
package types
