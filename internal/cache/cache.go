// Package cache serves the current article snapshot, refreshing from the
// document source when stale and surviving source outages by serving the
// last good snapshot.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/corvusec/newsdex/internal/domain/snapshot"
	"github.com/corvusec/newsdex/internal/metrics"
)

// DefaultTTL bounds how long a snapshot is served without a refresh.
const DefaultTTL = 60 * time.Second

// Source produces a fresh snapshot. Failures wrap
// domain.ErrSourceUnavailable.
type Source interface {
	FetchSnapshot(ctx context.Context) (*snapshot.Snapshot, error)
}

// SpillStore is an optional second-level snapshot cache that outlives the
// process (the durable counterpart of the in-memory copy).
type SpillStore interface {
	Load(ctx context.Context) (*snapshot.Snapshot, error)
	Save(ctx context.Context, snap *snapshot.Snapshot) error
}

// Stats describes the cache state for health reporting.
type Stats struct {
	Loaded    bool
	Articles  int
	FetchedAt time.Time
}

// Cache holds the current snapshot and its fetch time. Refresh is the only
// mutation; queries share the snapshot read-only.
type Cache struct {
	source Source
	spill  SpillStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	snap      *snapshot.Snapshot
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the snapshot TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSpill attaches a second-level store.
func WithSpill(spill SpillStore) Option {
	return func(c *Cache) { c.spill = spill }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache over the given document source.
func New(source Source, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		source: source,
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current snapshot, refreshing it when older than the
// TTL. Concurrent stale callers coalesce into a single upstream fetch. On
// refresh failure the last good snapshot is served; only a cold cache with
// an unreachable source propagates the error.
func (c *Cache) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	c.mu.RLock()
	snap, fetchedAt := c.snap, c.fetchedAt
	c.mu.RUnlock()

	if snap != nil && c.now().Sub(fetchedAt) < c.ttl {
		return snap, nil
	}

	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot.Snapshot), nil
}

// Stats reports the cache state without triggering a refresh.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return Stats{}
	}
	return Stats{Loaded: true, Articles: c.snap.Len(), FetchedAt: c.fetchedAt}
}

func (c *Cache) refresh(ctx context.Context) (*snapshot.Snapshot, error) {
	// Another coalesced caller may have completed the refresh while this
	// one waited on the singleflight gate.
	c.mu.RLock()
	snap, fetchedAt := c.snap, c.fetchedAt
	c.mu.RUnlock()
	if snap != nil && c.now().Sub(fetchedAt) < c.ttl {
		return snap, nil
	}

	fresh, err := c.source.FetchSnapshot(ctx)
	if err == nil {
		c.store(fresh)
		c.writeSpill(ctx, fresh)
		metrics.RecordSnapshotRefresh("ok")
		metrics.SetSnapshotArticles(fresh.Len())
		c.logger.Info("snapshot refreshed",
			zap.Int("articles", fresh.Len()),
			zap.String("generated_at", fresh.GeneratedAt()),
		)
		return fresh, nil
	}

	// Stale-but-available beats failing the query: the TTL is short
	// relative to how often the corpus changes.
	if snap != nil {
		metrics.RecordSnapshotRefresh("stale")
		c.logger.Warn("snapshot refresh failed, serving stale snapshot",
			zap.Error(err),
			zap.Time("fetched_at", fetchedAt),
		)
		return snap, nil
	}

	if c.spill != nil {
		spilled, spillErr := c.spill.Load(ctx)
		if spillErr == nil && spilled != nil {
			metrics.RecordSnapshotRefresh("spill")
			metrics.SetSnapshotArticles(spilled.Len())
			c.logger.Warn("snapshot refresh failed, recovered from spill store", zap.Error(err))
			c.store(spilled)
			return spilled, nil
		}
		if spillErr != nil {
			c.logger.Warn("spill store load failed", zap.Error(spillErr))
		}
	}

	metrics.RecordSnapshotRefresh("error")
	return nil, fmt.Errorf("refresh snapshot: %w", err)
}

func (c *Cache) store(snap *snapshot.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.fetchedAt = c.now()
	c.mu.Unlock()
}

func (c *Cache) writeSpill(ctx context.Context, snap *snapshot.Snapshot) {
	if c.spill == nil {
		return
	}
	if err := c.spill.Save(ctx, snap); err != nil {
		c.logger.Warn("spill store save failed", zap.Error(err))
	}
}
