package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theramap/insights-cli/internal/config"
	"github.com/theramap/insights-cli/internal/coverage"
	"github.com/theramap/insights-cli/internal/dedupe"
	"github.com/theramap/insights-cli/internal/insights"
	"github.com/theramap/insights-cli/internal/model"
	"github.com/theramap/insights-cli/internal/store"
)

func fptr(v float64) *float64 { return &v }

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	st, err := store.Open(context.Background(), config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	analyzer := coverage.NewAnalyzer(nil)
	cache := insights.NewCache(func(ctx context.Context) (*model.CoverageReport, error) {
		clinics, err := st.ListClinics(ctx, store.ClinicFilter{})
		if err != nil {
			return nil, err
		}
		return analyzer.Analyze(clinics), nil
	}, 0)
	// Warm like cmd/serve does so the first request is served hot.
	_, err = cache.Refresh(context.Background())
	require.NoError(t, err)

	srv := NewServer(config.ServerConfig{
		Port:            0,
		RateLimitPerSec: 100,
		RateLimitBurst:  100,
	}, st, cache, dedupe.NewDetector(0))
	return srv, st
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestInsightsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/insights")
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.CoverageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotZero(t, report.CentersAnalyzed)
	assert.NotEmpty(t, report.Underserved)
}

func TestInsightsEndpointColdCacheServesZeroState(t *testing.T) {
	st, err := store.Open(context.Background(), config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "cold.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	// No warm-up: the first request gets the empty report, not an error.
	cache := insights.NewCache(func(ctx context.Context) (*model.CoverageReport, error) {
		return coverage.NewAnalyzer(nil).Analyze(nil), nil
	}, 0)
	srv := NewServer(config.ServerConfig{
		Port:            0,
		RateLimitPerSec: 100,
		RateLimitBurst:  100,
	}, st, cache, dedupe.NewDetector(0))

	rec := get(t, srv, "/api/insights")
	require.Equal(t, http.StatusOK, rec.Code)

	var report model.CoverageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Zero(t, report.CentersAnalyzed)
	assert.Empty(t, report.Underserved)
}

func TestInsightsGeoJSONEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/insights.geojson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"FeatureCollection"`)
}

func TestRetentionEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	_, err := st.UpsertClinics(context.Background(), []model.ClinicRecord{
		{ID: "a", Name: "Verified Clinic", City: "Austin", State: "TX", Verified: true, Services: []string{"stuttering"}},
		{ID: "b", Name: "Unverified Clinic", City: "Austin", State: "TX"},
	})
	require.NoError(t, err)

	rec := get(t, srv, "/api/retention?state=TX")
	require.Equal(t, http.StatusOK, rec.Code)

	var scores []model.RetentionScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scores))
	require.Len(t, scores, 1)
	assert.Equal(t, "a", scores[0].ClinicID)
}

func TestClinicsEndpointFilters(t *testing.T) {
	srv, st := newTestServer(t)

	_, err := st.UpsertClinics(context.Background(), []model.ClinicRecord{
		{ID: "tx", Name: "TX Clinic", State: "TX"},
		{ID: "ca", Name: "CA Clinic", State: "CA"},
	})
	require.NoError(t, err)

	rec := get(t, srv, "/api/clinics?state=CA")
	require.Equal(t, http.StatusOK, rec.Code)

	var clinics []model.ClinicRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clinics))
	require.Len(t, clinics, 1)
	assert.Equal(t, "ca", clinics[0].ID)
}

func TestClinicsEndpointEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/clinics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestDuplicatesEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	twin := model.ClinicRecord{
		Name: "Twin Speech Center", City: "Boise", State: "ID",
		Phone:    "(208) 555-0122",
		Latitude: fptr(43.615), Longitude: fptr(-116.2023),
	}
	a, b := twin, twin
	a.ID, b.ID = "a", "b"
	_, err := st.UpsertClinics(context.Background(), []model.ClinicRecord{a, b})
	require.NoError(t, err)

	rec := get(t, srv, "/api/duplicates")
	require.Equal(t, http.StatusOK, rec.Code)

	var candidates []model.DuplicateCandidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &candidates))
	require.Len(t, candidates, 1)
	assert.InDelta(t, 1.0, candidates[0].Similarity, 0.001)
}

func TestCacheStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	get(t, srv, "/api/insights")
	rec := get(t, srv, "/api/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats insights.CacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.Refreshes)
}

func TestRateLimitExceeded(t *testing.T) {
	st, err := store.Open(context.Background(), config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "rl.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	cache := insights.NewCache(func(ctx context.Context) (*model.CoverageReport, error) {
		return &model.CoverageReport{}, nil
	}, 0)
	srv := NewServer(config.ServerConfig{
		Port:            0,
		RateLimitPerSec: 1,
		RateLimitBurst:  1,
	}, st, cache, dedupe.NewDetector(0))

	first := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, first.Code)

	second := get(t, srv, "/health")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
