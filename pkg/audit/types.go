package audit

import (
	"context"
	"time"
)

// Route names recorded on audit records and used as metric labels.
const (
	RouteHealth     = "health"
	RouteCompletion = "completion"
	RouteNotFound   = "not_found"
)

// Record is the audit entry for one dispatched request.
//
// Prompts are never stored; PromptHash carries the SHA-256 of the prompt so that
// repeated prompts can be correlated without retaining their text.
type Record struct {
	ID     string    `json:"id"`
	ConnID string    `json:"conn_id"`
	Time   time.Time `json:"time"`

	Method string `json:"method"`
	Path   string `json:"path"`
	Route  string `json:"route"`
	Status int    `json:"status"`

	PromptHash    string `json:"prompt_hash,omitempty"`
	PromptBytes   int    `json:"prompt_bytes"`
	ResponseBytes int    `json:"response_bytes"`

	Engine   string        `json:"engine,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Clone returns a shallow copy of r. Record has no reference fields, so the copy
// is independent.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

// Storage persists audit records.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record. Storing an ID twice replaces the earlier record.
	Store(ctx context.Context, record *Record) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// List returns up to limit records, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Record, error)

	// DeleteBefore removes records whose Time is before t and returns how many
	// were removed.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many were removed.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}

// Metrics receives recorder outcomes. *metrics.Collector satisfies it.
type Metrics interface {
	RecordAuditWrite(outcome string)
}

// Write outcomes reported to Metrics.
const (
	OutcomeStored  = "stored"
	OutcomeDropped = "dropped"
	OutcomeFailed  = "failed"
)
