// Package ast holds the unresolved descriptors produced by the parser.
//
// Nothing here refers to a resolved type: every type position is a TypeRef
// (a name plus generic arguments) that the resolver turns into a
// types.Type later, possibly on another goroutine. Descriptors are
// immutable once the parser hands them to its Sink and are shared by
// pointer between tasks.
package ast
