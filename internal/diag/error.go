package diag

import (
	"errors"
	"fmt"

	"ember/internal/source"
)

// Error carries a Diagnostic through the error channel of core operations.
type Error struct {
	Diag Diagnostic
	// Cause is the root failure when this error only reports a poisoned
	// dependency.
	Cause *Error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Diag.Code.ID(), e.Diag.Message)
}

// Code returns the diagnostic code, or UnknownCode for nil.
func (e *Error) Code() Code {
	if e == nil {
		return UnknownCode
	}
	return e.Diag.Code
}

// Root follows Cause links to the original failure.
func (e *Error) Root() *Error {
	for e != nil && e.Cause != nil {
		e = e.Cause
	}
	return e
}

// Wrap turns a Diagnostic into an *Error.
func Wrap(d Diagnostic) *Error {
	return &Error{Diag: d}
}

// Failf builds an error-level *Error.
func Failf(code Code, primary source.Span, format string, args ...any) *Error {
	return Wrap(Errorf(code, primary, format, args...))
}

// Dependent reports that the symbol at primary could not be finalized because
// a symbol it depends on was poisoned. The result is informational.
func Dependent(primary source.Span, what string, cause *Error) *Error {
	root := cause.Root()
	d := New(SevInfo, SemaPoisonedDependency, primary, fmt.Sprintf("%s depends on a symbol that failed to resolve", what))
	if root != nil {
		d = d.WithNote(root.Diag.Primary, root.Diag.Message)
	}
	return &Error{Diag: d, Cause: root}
}

// AsError extracts an *Error from err. Foreign errors are wrapped as
// UnknownCode diagnostics so callers always get a diagnostic back.
func AsError(err error, primary source.Span) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Failf(UnknownCode, primary, "%v", err)
}

// IsCode reports whether err carries a diagnostic with the given code.
func IsCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Diag.Code == code
}
