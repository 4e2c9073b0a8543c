// Package diag defines the diagnostic model shared by all front-end phases.
//
// # Data model
//
// Diagnostic is the central record: Severity, a compact numeric Code with a
// stable string form, a short Message, the Primary span and optional Notes.
// Fix suggestions are plain data (Fix/FixEdit); nothing in this package
// formats, prints or applies them.
//
// # Emitting diagnostics
//
// Phases that can keep going after a problem (lexer, parser) emit through a
// Reporter, usually a BagReporter that appends to a Bag. The resolution core
// cannot "keep going" in the same sense: a symbol either finalizes or is
// poisoned. Core operations therefore return an *Error that wraps a single
// Diagnostic; the poisoned registry entry keeps that error and the driver
// collects it into the final report.
//
// # Severity of poison
//
// Only root causes are errors. A symbol that fails because something it
// depends on failed is poisoned with SemaPoisonedDependency at SevInfo, so a
// single bad definition yields one error no matter how many symbols depend on
// it.
//
// Internal/diagfmt renders diagnostics; internal/driver collects them.
package diag
