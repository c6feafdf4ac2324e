package insights

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theramap/insights-cli/internal/model"
)

func countingCompute(calls *atomic.Int64) ComputeFunc {
	return func(ctx context.Context) (*model.CoverageReport, error) {
		n := calls.Add(1)
		return &model.CoverageReport{
			ID:              "report",
			CentersAnalyzed: int(n),
			GeneratedAt:     time.Now(),
		}, nil
	}
}

func TestGetNeverBlocksOnCompute(t *testing.T) {
	release := make(chan struct{})
	compute := func(ctx context.Context) (*model.CoverageReport, error) {
		<-release
		return &model.CoverageReport{ID: "slow"}, nil
	}
	c := NewCache(compute, time.Minute)

	done := make(chan *model.CoverageReport, 1)
	go func() { done <- c.Get() }()

	var report *model.CoverageReport
	select {
	case report = <-done:
	case <-time.After(time.Second):
		t.Fatal("Get blocked on the compute")
	}

	// The compute has not finished, so this is the zero-state report.
	require.NotNil(t, report)
	assert.Empty(t, report.Underserved)
	assert.Empty(t, report.Overserved)
	assert.Empty(t, report.Optimal)
	assert.Zero(t, report.TotalCoveragePercent)
	assert.False(t, report.GeneratedAt.IsZero())

	close(release)
	require.Eventually(t, func() bool {
		return c.Get().ID == "slow"
	}, time.Second, 5*time.Millisecond)
}

func TestGetComputesInBackgroundOnFirstCall(t *testing.T) {
	var calls atomic.Int64
	c := NewCache(countingCompute(&calls), time.Minute)

	report := c.Get()
	require.NotNil(t, report)
	assert.Zero(t, report.CentersAnalyzed)

	require.Eventually(t, func() bool {
		return calls.Load() == 1 && c.Get().CentersAnalyzed == 1
	}, time.Second, 5*time.Millisecond)
}

func TestGetServesCachedWithinTTL(t *testing.T) {
	var calls atomic.Int64
	c := NewCache(countingCompute(&calls), time.Minute)

	seeded, err := c.Refresh(context.Background())
	require.NoError(t, err)

	first := c.Get()
	second := c.Get()

	// Same generation, no second compute.
	assert.Same(t, seeded, first)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetStaleServesOldAndRefreshesInBackground(t *testing.T) {
	var calls atomic.Int64
	c := NewCache(countingCompute(&calls), time.Minute)

	clock := time.Now()
	c.now = func() time.Time { return clock }

	first, err := c.Refresh(context.Background())
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)

	// The stale read returns the old report without waiting.
	stale := c.Get()
	assert.Same(t, first, stale)

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return c.Get().CentersAnalyzed == 2
	}, time.Second, 5*time.Millisecond)
}

func TestRefreshFailureKeepsStaleReport(t *testing.T) {
	var fail atomic.Bool
	var calls atomic.Int64
	compute := func(ctx context.Context) (*model.CoverageReport, error) {
		calls.Add(1)
		if fail.Load() {
			return nil, eris.New("cache test: store unavailable")
		}
		return &model.CoverageReport{ID: "ok"}, nil
	}
	c := NewCache(compute, time.Minute)

	good, err := c.Refresh(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	got, err := c.Refresh(context.Background())
	assert.Error(t, err)
	assert.Same(t, good, got)

	// Reads keep working off the last good report.
	assert.Same(t, good, c.Get())
}

func TestGetServesEmptyReportWhenComputeFails(t *testing.T) {
	c := NewCache(func(ctx context.Context) (*model.CoverageReport, error) {
		return nil, eris.New("cache test: compute failed")
	}, time.Minute)

	report := c.Get()
	require.NotNil(t, report)
	assert.Empty(t, report.Underserved)
	assert.Zero(t, report.CentersAnalyzed)

	require.Eventually(t, func() bool {
		return c.Stats().Failures >= 1
	}, time.Second, 5*time.Millisecond)

	// Still the zero-state report, still no error surfaced to readers.
	again := c.Get()
	require.NotNil(t, again)
	assert.Empty(t, again.Underserved)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	var calls atomic.Int64
	c := NewCache(countingCompute(&calls), time.Minute)

	_, err := c.Refresh(context.Background())
	require.NoError(t, err)
	c.Invalidate()

	// Back to the zero-state report until the background pass lands.
	assert.Zero(t, c.Get().CentersAnalyzed)
	require.Eventually(t, func() bool {
		return calls.Load() == 2 && c.Get().CentersAnalyzed == 2
	}, time.Second, 5*time.Millisecond)
}

func TestStats(t *testing.T) {
	var calls atomic.Int64
	c := NewCache(countingCompute(&calls), time.Minute)

	_ = c.Get() // miss, triggers the first compute
	require.Eventually(t, func() bool {
		return c.Stats().Refreshes == 1
	}, time.Second, 5*time.Millisecond)
	_ = c.Get() // hit

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Refreshes)
	assert.EqualValues(t, 0, stats.Failures)
}

func TestDefaultTTLApplied(t *testing.T) {
	c := NewCache(countingCompute(new(atomic.Int64)), 0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
