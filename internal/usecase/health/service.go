// Package health reports service liveness and cache state.
package health

import (
	"context"
	"time"
)

// Statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Report is the health check result.
type Report struct {
	Status      string            `json:"status"`
	Cache       string            `json:"cache"`
	Articles    int               `json:"articles"`
	SnapshotAge string            `json:"snapshot_age,omitempty"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// Service aggregates health signals. The spill store is optional.
type Service struct {
	cache CacheInspector
	spill Pinger
	now   func() time.Time
}

// New creates a health service. spill may be nil.
func New(cache CacheInspector, spill Pinger) *Service {
	return &Service{cache: cache, spill: spill, now: time.Now}
}

// Check reports the current health. An empty cache is normal before the
// first query and does not degrade the status; a failing spill store does.
func (s *Service) Check(ctx context.Context) *Report {
	r := &Report{Status: StatusOK, Cache: "empty"}

	stats := s.cache.Stats()
	if stats.Loaded {
		r.Cache = "loaded"
		r.Articles = stats.Articles
		r.SnapshotAge = s.now().Sub(stats.FetchedAt).Truncate(time.Second).String()
	}

	if s.spill != nil {
		r.Checks = map[string]string{}
		if err := s.spill.Ping(ctx); err != nil {
			r.Status = StatusDegraded
			r.Checks["spill_store"] = err.Error()
		} else {
			r.Checks["spill_store"] = "ok"
		}
	}
	return r
}
