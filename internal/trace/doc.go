// Package trace provides a tracing subsystem for the Ember front end.
//
// Tracing follows the life of a compilation: driver phases, per-file tasks
// and per-symbol finalization tasks. It is the first thing to enable when a
// build appears stuck, because the symbol registry reports suspended
// requests, poison and sweeps through the same tracer.
//
// # Usage
//
//	ember check --trace=- --trace-level=detail ./src
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events in memory for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// # Scopes and levels
//
// ScopeDriver and ScopePass events are emitted at LevelPhase, ScopeModule
// (files) at LevelDetail, ScopeNode (symbols) only at LevelDebug.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "resolve", 0)
//	defer span.End("")
package trace
