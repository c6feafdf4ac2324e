// Package insights caches the coverage report with stale-while-revalidate
// semantics so API reads never block on a recompute.
package insights

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/model"
)

// DefaultTTL is how long a cached report is served before a background
// refresh is triggered.
const DefaultTTL = 120 * time.Second

// ComputeFunc produces a fresh coverage report.
type ComputeFunc func(ctx context.Context) (*model.CoverageReport, error)

// payload is one immutable cache generation. Readers take the whole
// pointer, so a concurrent refresh can never hand out a torn report.
type payload struct {
	report     *model.CoverageReport
	computed   time.Time
	generation int64
}

// CacheStats counts cache activity since construction.
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Refreshes int64 `json:"refreshes"`
	Failures  int64 `json:"failures"`
}

// Cache serves the latest coverage report, recomputing it at most once
// per TTL window. A stale read returns the previous report immediately
// and refreshes in the background.
type Cache struct {
	compute    ComputeFunc
	ttl        time.Duration
	now        func() time.Time
	current    atomic.Pointer[payload]
	refreshing atomic.Bool

	hits      atomic.Int64
	misses    atomic.Int64
	refreshes atomic.Int64
	failures  atomic.Int64
}

// NewCache creates a Cache over the given compute function. A
// non-positive ttl falls back to the default.
func NewCache(compute ComputeFunc, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		compute: compute,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the current report without ever blocking on a recompute.
// Before the first successful compute it serves the zero-state report
// (empty partitions, zero coverage); once a report exists, a stale read
// serves it as-is. Either way a single background refresh is started.
func (c *Cache) Get() *model.CoverageReport {
	p := c.current.Load()
	if p == nil {
		c.misses.Add(1)
		c.refreshInBackground()
		return emptyReport(c.now())
	}

	if c.now().Sub(p.computed) > c.ttl {
		c.misses.Add(1)
		c.refreshInBackground()
		return p.report
	}

	c.hits.Add(1)
	return p.report
}

// refreshInBackground starts one refresh if none is in flight. The
// refresh is detached from any request context so it can outlive the
// caller that noticed the empty or stale cell.
func (c *Cache) refreshInBackground() {
	if !c.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.refreshing.Store(false)
		if _, err := c.Refresh(context.Background()); err != nil {
			zap.L().Warn("insights: background refresh failed", zap.Error(err))
		}
	}()
}

// emptyReport is the zero-state payload served before the first
// successful compute. Partitions are non-nil so callers and JSON
// consumers see empty arrays, not nulls.
func emptyReport(now time.Time) *model.CoverageReport {
	return &model.CoverageReport{
		Underserved: []model.CoverageInsight{},
		Overserved:  []model.CoverageInsight{},
		Optimal:     []model.CoverageInsight{},
		GeneratedAt: now,
	}
}

// Refresh recomputes the report synchronously and swaps it in. On
// failure the previous report stays current.
func (c *Cache) Refresh(ctx context.Context) (*model.CoverageReport, error) {
	report, err := c.compute(ctx)
	if err != nil {
		c.failures.Add(1)
		if p := c.current.Load(); p != nil {
			return p.report, err
		}
		return nil, err
	}

	gen := c.refreshes.Add(1)
	c.current.Store(&payload{
		report:     report,
		computed:   c.now(),
		generation: gen,
	})

	zap.L().Debug("insights: report refreshed",
		zap.Int64("generation", gen),
		zap.Int("centers", report.CentersAnalyzed),
		zap.Int("clinics", report.ClinicsAnalyzed),
	)

	return report, nil
}

// Invalidate drops the cached report; the next Get serves the
// zero-state report and triggers a recompute.
func (c *Cache) Invalidate() {
	c.current.Store(nil)
}

// Stats returns cache activity counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Refreshes: c.refreshes.Load(),
		Failures:  c.failures.Load(),
	}
}
