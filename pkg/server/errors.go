package server

import "fmt"

// Setup stages reported by SetupError.
const (
	StageSockopt = "sockopt"
	StageListen  = "listen"
)

// SetupError is returned when the listening socket cannot be created.
// Callers treat it as fatal.
type SetupError struct {
	Stage   string
	Address string
	Err     error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("server setup failed at %s on %s: %v", e.Stage, e.Address, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// sockoptError marks a failure inside the listener Control hook so Listen can
// tell it apart from a bind failure.
type sockoptError struct {
	option string
	err    error
}

func (e *sockoptError) Error() string {
	return fmt.Sprintf("set %s: %v", e.option, e.err)
}

func (e *sockoptError) Unwrap() error {
	return e.err
}
