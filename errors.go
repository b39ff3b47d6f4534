package shaderres

import (
	"errors"
	"fmt"

	"github.com/gogpu/shaderres/compose"
)

// Errors returned by shader operations.
var (
	// ErrNotCompiled is returned when attaching or detaching a per-context
	// shader that has no valid handle yet.
	ErrNotCompiled = errors.New("shaderres: shader not compiled in this context")

	// ErrMalformedSource is returned when injected code must go inside or
	// after the entry point but the source has none.
	ErrMalformedSource = compose.ErrMalformedSource

	// ErrCompile matches every *CompileError.
	ErrCompile = errors.New("shaderres: compile failed")

	// ErrIO wraps file loading failures.
	ErrIO = errors.New("shaderres: i/o error")

	// ErrNoCode is returned when compiling a shader with neither source
	// text nor a binary.
	ErrNoCode = errors.New("shaderres: shader has no source or binary")
)

// CompileError reports a driver rejecting source or binary code.
// Log holds the compiler diagnostics.
type CompileError struct {
	Name    string
	Kind    Kind
	Context ContextID
	Log     string
	Err     error
}

func (e *CompileError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	msg := fmt.Sprintf("shaderres: compile %s shader %s in %s", e.Kind, name, e.Context)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrCompile and the driver error.
func (e *CompileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCompile}
	}
	return []error{ErrCompile, e.Err}
}
