package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/audit/storage"
	"workspaces-inventory/phi3/pkg/config"
)

type prunedCounter struct{ total int64 }

func (c *prunedCounter) RecordAuditPruned(n int64) { c.total += n }

func seed(t *testing.T, s audit.Storage, now time.Time, ages ...int) {
	t.Helper()
	for i, days := range ages {
		r := &audit.Record{
			ID:     string(rune('a' + i)),
			Time:   now.AddDate(0, 0, -days),
			Route:  audit.RouteHealth,
			Status: 200,
		}
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
}

func TestPruner_Prune(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		days        int
		maxRecords  int64
		ages        []int
		wantDeleted int64
		wantLeft    int64
	}{
		{"by age", 7, 0, []int{10, 8, 5, 3}, 2, 2},
		{"by count", 0, 2, []int{4, 3, 2, 1}, 2, 2},
		{"age then count", 7, 1, []int{30, 6, 5, 1}, 3, 1},
		{"within limits", 30, 10, []int{1, 2}, 0, 2},
		{"disabled", 0, 0, []int{400, 500}, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			seed(t, store, now, tt.ages...)

			counter := &prunedCounter{}
			p := NewPruner(store, &config.RetentionConfig{Days: tt.days, MaxRecords: tt.maxRecords}, counter)
			p.now = func() time.Time { return now }

			deleted, err := p.Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("Prune() = %d, want %d", deleted, tt.wantDeleted)
			}
			if counter.total != tt.wantDeleted {
				t.Errorf("metrics pruned = %d, want %d", counter.total, tt.wantDeleted)
			}
			if left, _ := store.Count(context.Background()); left != tt.wantLeft {
				t.Errorf("remaining = %d, want %d", left, tt.wantLeft)
			}
		})
	}
}

func TestPruner_CountKeepsNewest(t *testing.T) {
	now := time.Now()
	store := storage.NewMemoryStorage()
	seed(t, store, now, 3, 2, 1)

	p := NewPruner(store, &config.RetentionConfig{MaxRecords: 1}, nil)
	if _, err := p.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	list, _ := store.List(context.Background(), 0)
	if len(list) != 1 || list[0].ID != "c" {
		t.Errorf("remaining = %+v, want newest record c", list)
	}
}

type failingStorage struct {
	*storage.MemoryStorage
}

func (failingStorage) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	return 0, errors.New("locked")
}

func TestPruner_Error(t *testing.T) {
	p := NewPruner(failingStorage{storage.NewMemoryStorage()}, &config.RetentionConfig{Days: 1}, nil)
	_, err := p.Prune(context.Background())
	var re *audit.RetentionError
	if !errors.As(err, &re) || re.Phase != "age" {
		t.Errorf("Prune() error = %v, want age RetentionError", err)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	p := NewPruner(storage.NewMemoryStorage(), &config.RetentionConfig{Days: 1, PruneSchedule: "0 3 * * *"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.scheduler.IsRunning() {
		t.Fatal("scheduler not running after Start")
	}
	if err := p.Start(ctx); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	next := p.NextPruning()
	if next == nil || !next.After(time.Now()) || next.Hour() != 3 {
		t.Errorf("NextPruning() = %v, want a future 03:00", next)
	}

	p.Stop()
	if p.scheduler.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
	p.Stop()
}

func TestScheduler_StopsOnContext(t *testing.T) {
	p := NewPruner(storage.NewMemoryStorage(), &config.RetentionConfig{PruneSchedule: "@hourly"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for p.scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.scheduler.IsRunning() {
		t.Error("scheduler still running after context cancel")
	}
}

func TestScheduler_Config(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
		running  bool
	}{
		{"empty schedule", "", false, false},
		{"invalid", "not a cron", true, false},
		{"six fields rejected", "0 0 3 * * *", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPruner(storage.NewMemoryStorage(), &config.RetentionConfig{PruneSchedule: tt.schedule}, nil)
			err := p.Start(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Start() error = %v, wantErr %v", err, tt.wantErr)
			}
			if p.scheduler.IsRunning() != tt.running {
				t.Errorf("IsRunning() = %v, want %v", p.scheduler.IsRunning(), tt.running)
			}
			if p.NextPruning() != nil {
				t.Errorf("NextPruning() = %v, want nil", p.NextPruning())
			}
		})
	}
}
