// Package sema turns unresolved declarations into finalized ones.
//
// Every operation runs inside a symbol task and talks to the rest of the
// compilation only through the symbol registry: type references await
// their structure at StageDeclared, calls await callee signatures,
// field accesses await finalized structures. A failure never aborts the
// compilation; it poisons the symbol being finalized and dependents pick
// the poison up as an informational PoisonedDependency.
package sema
