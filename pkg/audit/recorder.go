package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"workspaces-inventory/phi3/pkg/config"
)

// Recorder writes audit records asynchronously.
//
// Record hands the record to a buffered channel drained by a single worker, so the
// request path never waits on storage. When the buffer is full, Record waits at
// most WriteTimeout before dropping the record.
//
// A nil *Recorder is valid and discards every record.
type Recorder struct {
	storage    Storage
	config     *config.AuditConfig
	metrics    Metrics
	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger

	// mu is held for reading while a record is being queued and for writing
	// while closing, so nothing is queued after the worker drains.
	mu     sync.RWMutex
	closed bool
}

// NewRecorder creates a recorder writing to storage and starts its worker.
// metrics may be nil.
func NewRecorder(storage Storage, cfg *config.AuditConfig, metrics Metrics) *Recorder {
	if cfg == nil {
		cfg = &config.Default().Audit
	}

	r := &Recorder{
		storage:    storage,
		config:     cfg,
		metrics:    metrics,
		recordChan: make(chan *Record, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"backend", cfg.Backend,
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
	)

	return r
}

// Record enqueues record for storage. A missing ID or Time is filled in.
// It returns a *RecorderError when the record was dropped.
func (r *Recorder) Record(ctx context.Context, record *Record) error {
	if r == nil || record == nil {
		return nil
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Time.IsZero() {
		record.Time = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return r.drop(record, context.Canceled, "recorder closed, dropping record")
	}

	select {
	case r.recordChan <- record:
		return nil
	default:
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.recordChan <- record:
		return nil
	case <-timer.C:
		return r.drop(record, context.DeadlineExceeded, "audit channel full, dropping record")
	case <-ctx.Done():
		return r.drop(record, ctx.Err(), "request ended before record was queued")
	}
}

func (r *Recorder) drop(record *Record, cause error, msg string) error {
	r.logger.Error(msg,
		"record_id", record.ID,
		"conn_id", record.ConnID,
		"channel_capacity", cap(r.recordChan),
	)
	if r.metrics != nil {
		r.metrics.RecordAuditWrite(OutcomeDropped)
	}
	return NewRecorderError(record.ID, cause)
}

// Close stops accepting records, writes everything already queued and returns.
// It does not close the storage.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down audit recorder")
		r.mu.Lock()
		r.closed = true
		close(r.done)
		r.mu.Unlock()
		r.wg.Wait()
		r.logger.Info("audit recorder shut down")
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.write(record)

		case <-r.done:
			r.logger.Debug("draining audit channel", "pending", len(r.recordChan))
			for {
				select {
				case record := <-r.recordChan:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.RecordAuditWrite(OutcomeFailed)
		}
		return
	}
	if r.metrics != nil {
		r.metrics.RecordAuditWrite(OutcomeStored)
	}

	duration := time.Since(start)
	r.logger.Debug("audit record stored",
		"record_id", record.ID,
		"route", record.Route,
		"status", record.Status,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
