package retention

import (
	"context"
	"log/slog"
	"time"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/config"
)

// Metrics receives the number of pruned records. *metrics.Collector satisfies it.
type Metrics interface {
	RecordAuditPruned(n int64)
}

// Pruner enforces the retention policy on an audit store.
type Pruner struct {
	storage   audit.Storage
	config    *config.RetentionConfig
	metrics   Metrics
	logger    *slog.Logger
	now       func() time.Time
	scheduler *Scheduler
}

// NewPruner creates a pruner for storage. metrics may be nil.
func NewPruner(storage audit.Storage, cfg *config.RetentionConfig, metrics Metrics) *Pruner {
	if cfg == nil {
		cfg = &config.Default().Audit.Retention
	}

	p := &Pruner{
		storage: storage,
		config:  cfg,
		metrics: metrics,
		logger:  slog.Default().With("component", "audit.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. Either phase is skipped when its limit is 0.
// It returns the total number of records deleted, including those deleted
// before an error.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		total += deleted
		if err != nil {
			p.report(total)
			return total, audit.NewRetentionError("age", err)
		}
		if deleted > 0 {
			p.logger.Info("pruned records by age",
				"deleted_count", deleted,
				"retention_days", p.config.Days,
			)
		}
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		total += deleted
		if err != nil {
			p.report(total)
			return total, audit.NewRetentionError("count", err)
		}
		if deleted > 0 {
			p.logger.Info("pruned records by count",
				"deleted_count", deleted,
				"max_records", p.config.MaxRecords,
			)
		}
	}

	p.report(total)
	if total == 0 {
		p.logger.Debug("no audit records pruned",
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}

	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)
	return p.storage.DeleteBefore(ctx, cutoff)
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}
	return p.storage.DeleteOldest(ctx, count-p.config.MaxRecords)
}

func (p *Pruner) report(n int64) {
	if p.metrics != nil && n > 0 {
		p.metrics.RecordAuditPruned(n)
	}
}

// Start runs Prune on the configured schedule until ctx is done or Stop is
// called.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops scheduled pruning and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the next scheduled prune, or nil when not scheduled.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
