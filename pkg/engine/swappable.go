package engine

import (
	"context"
	"sync/atomic"
)

type engineBox struct {
	e Engine
}

// Swappable holds an engine that can be replaced while completions are in
// flight. A completion uses the engine that was current when it started.
type Swappable struct {
	current atomic.Pointer[engineBox]
}

// NewSwappable returns a Swappable holding e.
func NewSwappable(e Engine) *Swappable {
	s := &Swappable{}
	s.Swap(e)
	return s
}

// Swap installs e and returns the previous engine.
func (s *Swappable) Swap(e Engine) Engine {
	old := s.current.Swap(&engineBox{e: e})
	if old == nil {
		return nil
	}
	return old.e
}

// Current returns the engine in use.
func (s *Swappable) Current() Engine {
	return s.current.Load().e
}

// Resolve returns the engine that will serve the next completion: the current
// engine of a Swappable, or e itself otherwise. Callers that need the engine's
// name and its completion to agree resolve once and use the result for both.
func Resolve(e Engine) Engine {
	if s, ok := e.(*Swappable); ok {
		return s.Current()
	}
	return e
}

// Complete implements Engine.
func (s *Swappable) Complete(ctx context.Context, prompt string) (Result, error) {
	return s.Current().Complete(ctx, prompt)
}

// Name implements Engine.
func (s *Swappable) Name() string {
	return s.Current().Name()
}
