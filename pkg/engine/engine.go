package engine

import (
	"context"
	"fmt"
)

// Engine turns a prompt into completion text.
//
// Implementations must be safe for concurrent use, since every connection
// calls Complete from its own goroutine. Backends that hold shared state should
// be wrapped with Serialized.
type Engine interface {
	// Complete generates text for prompt. The prompt may be empty. A nil error
	// always comes with a usable Result, even if its Text is empty.
	Complete(ctx context.Context, prompt string) (Result, error)

	// Name returns the backend name, e.g. "placeholder" or "llamacpp".
	Name() string
}

// Checker is implemented by engines that can report whether the resources
// they run on are still available.
type Checker interface {
	Check() error
}

// Check follows the wrapper chain of e down to the first Checker and runs it.
// Engines that cannot check themselves report nil.
func Check(e Engine) error {
	for e != nil {
		if c, ok := e.(Checker); ok {
			return c.Check()
		}
		switch w := e.(type) {
		case interface{ Unwrap() Engine }:
			e = w.Unwrap()
		case interface{ Current() Engine }:
			e = w.Current()
		default:
			return nil
		}
	}
	return nil
}

// Result is the output of a single completion.
type Result struct {
	// Text is the generated completion.
	Text string

	// Tokens is the number of generated tokens, or an estimate when the
	// backend does not report it.
	Tokens int
}

// Error reports a failed completion.
type Error struct {
	// Engine is the name of the backend that failed.
	Engine string

	// Message describes the failure.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine %q: %s: %v", e.Engine, e.Message, e.Cause)
	}
	return fmt.Sprintf("engine %q: %s", e.Engine, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}
