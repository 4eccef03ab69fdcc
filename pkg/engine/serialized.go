package engine

import "context"

// Serialized wraps an engine so that at most one completion runs at a time.
// Waiting callers give up when their context is done.
type Serialized struct {
	inner Engine
	sem   chan struct{}
}

// NewSerialized wraps e.
func NewSerialized(e Engine) *Serialized {
	return &Serialized{inner: e, sem: make(chan struct{}, 1)}
}

// Complete implements Engine.
func (s *Serialized) Complete(ctx context.Context, prompt string) (Result, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, &Error{Engine: s.inner.Name(), Message: "waiting for engine", Cause: ctx.Err()}
	}
	defer func() { <-s.sem }()

	return s.inner.Complete(ctx, prompt)
}

// Name implements Engine.
func (s *Serialized) Name() string {
	return s.inner.Name()
}

// Unwrap returns the wrapped engine.
func (s *Serialized) Unwrap() Engine {
	return s.inner
}
