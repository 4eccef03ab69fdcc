package engine

import (
	"context"
	"time"
)

// Timeout bounds every completion of the wrapped engine.
type Timeout struct {
	inner   Engine
	timeout time.Duration
}

// NewTimeout wraps e so each Complete call is cancelled after d. A
// non-positive d returns e unchanged.
func NewTimeout(e Engine, d time.Duration) Engine {
	if d <= 0 {
		return e
	}
	return &Timeout{inner: e, timeout: d}
}

// Complete implements Engine.
func (t *Timeout) Complete(ctx context.Context, prompt string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Complete(ctx, prompt)
}

// Name implements Engine.
func (t *Timeout) Name() string {
	return t.inner.Name()
}

// Unwrap returns the wrapped engine.
func (t *Timeout) Unwrap() Engine {
	return t.inner
}
