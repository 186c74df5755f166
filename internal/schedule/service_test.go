package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type mockPurger struct {
	mu      sync.Mutex
	calls   int
	cutoffs []time.Time
	removed int
	err     error
}

func (m *mockPurger) PurgeTemporary(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.removed, m.err
}

func (m *mockPurger) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestRunOnceUsesTTLCutoff(t *testing.T) {
	purger := &mockPurger{removed: 3}
	svc, err := NewService(slog.Default(), purger, "@every 1h", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	removed, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	want := now.Add(-24 * time.Hour)
	if len(purger.cutoffs) != 1 || !purger.cutoffs[0].Equal(want) {
		t.Fatalf("expected cutoff %s, got %v", want, purger.cutoffs)
	}
}

func TestRunOncePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	svc, err := NewService(nil, &mockPurger{err: boom}, "", time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	if _, err := svc.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(nil, &mockPurger{}, "not a cron", time.Hour); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if _, err := NewService(nil, &mockPurger{}, "@every 1h", 0); !errors.Is(err, ErrInvalidTTL) {
		t.Fatalf("expected ErrInvalidTTL, got %v", err)
	}
	if _, err := NewService(nil, nil, "@every 1h", time.Hour); err == nil {
		t.Fatal("expected error for missing purger")
	}
}

func TestDisabledStartIsNoop(t *testing.T) {
	purger := &mockPurger{}
	svc, err := NewService(nil, purger, "  ", time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}

func TestStartRunsScheduledPurge(t *testing.T) {
	purger := &mockPurger{}
	svc, err := NewService(nil, purger, "@every 1s", time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for purger.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if purger.callCount() == 0 {
		t.Fatal("expected scheduled purge to run")
	}
}
