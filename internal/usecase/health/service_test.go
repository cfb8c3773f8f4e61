package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corvusec/newsdex/internal/cache"
)

// --- Mocks ---

type mockInspector struct {
	stats cache.Stats
}

func (m *mockInspector) Stats() cache.Stats { return m.stats }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_EmptyCacheIsOK(t *testing.T) {
	svc := New(&mockInspector{}, nil)

	r := svc.Check(context.Background())
	if r.Status != StatusOK {
		t.Errorf("expected ok, got %q", r.Status)
	}
	if r.Cache != "empty" {
		t.Errorf("expected empty cache, got %q", r.Cache)
	}
	if r.Checks != nil {
		t.Errorf("no spill store configured, checks should be absent: %v", r.Checks)
	}
}

func TestCheck_LoadedCache(t *testing.T) {
	svc := New(&mockInspector{stats: cache.Stats{
		Loaded:    true,
		Articles:  42,
		FetchedAt: time.Now().Add(-30 * time.Second),
	}}, nil)

	r := svc.Check(context.Background())
	if r.Cache != "loaded" || r.Articles != 42 {
		t.Errorf("unexpected report: %+v", r)
	}
	if r.SnapshotAge == "" {
		t.Error("expected snapshot age for a loaded cache")
	}
}

func TestCheck_SpillFailureDegrades(t *testing.T) {
	svc := New(&mockInspector{}, &mockPinger{err: errors.New("connection refused")})

	r := svc.Check(context.Background())
	if r.Status != StatusDegraded {
		t.Errorf("expected degraded, got %q", r.Status)
	}
	if r.Checks["spill_store"] == "ok" {
		t.Error("spill check should carry the failure")
	}
}

func TestCheck_SpillHealthy(t *testing.T) {
	svc := New(&mockInspector{}, &mockPinger{})

	r := svc.Check(context.Background())
	if r.Status != StatusOK {
		t.Errorf("expected ok, got %q", r.Status)
	}
	if r.Checks["spill_store"] != "ok" {
		t.Errorf("unexpected spill check: %q", r.Checks["spill_store"])
	}
}
