package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theramap/insights-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func fptr(v float64) *float64 { return &v }

func testClinic(id string) model.ClinicRecord {
	return model.ClinicRecord{
		ID:        id,
		Name:      "Clinic " + id,
		City:      "Austin",
		State:     "TX",
		Latitude:  fptr(30.2672),
		Longitude: fptr(-97.7431),
		Phone:     "(512) 555-0101",
		Services:  []string{"articulation", "stuttering"},
		Cost:      model.CostLowCost,
		Verified:  true,
	}
}

func TestSQLite_UpsertAndListClinics(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.UpsertClinics(ctx, []model.ClinicRecord{testClinic("a"), testClinic("b")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	clinics, err := st.ListClinics(ctx, ClinicFilter{})
	require.NoError(t, err)
	require.Len(t, clinics, 2)
	assert.Equal(t, "Clinic a", clinics[0].Name)
	assert.Equal(t, []string{"articulation", "stuttering"}, clinics[0].Services)
	require.NotNil(t, clinics[0].Latitude)
	assert.InDelta(t, 30.2672, *clinics[0].Latitude, 0.0001)
	assert.Equal(t, model.CostLowCost, clinics[0].Cost)
}

func TestSQLite_UpsertOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := testClinic("a")
	_, err := st.UpsertClinics(ctx, []model.ClinicRecord{c})
	require.NoError(t, err)

	c.Name = "Renamed Clinic"
	c.Teletherapy = true
	_, err = st.UpsertClinics(ctx, []model.ClinicRecord{c})
	require.NoError(t, err)

	got, err := st.GetClinic(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed Clinic", got.Name)
	assert.True(t, got.Teletherapy)
}

func TestSQLite_UpsertAssignsID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := testClinic("")
	c.ID = ""
	_, err := st.UpsertClinics(ctx, []model.ClinicRecord{c})
	require.NoError(t, err)

	clinics, err := st.ListClinics(ctx, ClinicFilter{})
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	assert.NotEmpty(t, clinics[0].ID)
}

func TestSQLite_ListClinicsStateFilter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ca := testClinic("ca")
	ca.State = "CA"
	_, err := st.UpsertClinics(ctx, []model.ClinicRecord{testClinic("tx"), ca})
	require.NoError(t, err)

	clinics, err := st.ListClinics(ctx, ClinicFilter{State: "ca"})
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	assert.Equal(t, "CA", clinics[0].State)
}

func TestSQLite_ListClinicsVerifiedOnly(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	unverified := testClinic("u")
	unverified.Verified = false
	_, err := st.UpsertClinics(ctx, []model.ClinicRecord{testClinic("v"), unverified})
	require.NoError(t, err)

	clinics, err := st.ListClinics(ctx, ClinicFilter{VerifiedOnly: true})
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	assert.Equal(t, "v", clinics[0].ID)
}

func TestSQLite_GetClinicMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetClinic(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_DeleteClinic(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertClinics(ctx, []model.ClinicRecord{testClinic("a")})
	require.NoError(t, err)
	require.NoError(t, st.DeleteClinic(ctx, "a"))

	err = st.DeleteClinic(ctx, "a")
	assert.Error(t, err)
}

func TestSQLite_ApplyEnhancementPatchesOnlyGivenFields(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertClinics(ctx, []model.ClinicRecord{testClinic("a")})
	require.NoError(t, err)

	err = st.ApplyEnhancement(ctx, model.FieldEnhancement{
		ClinicID: "a",
		Phone:    "(512) 555-9999",
		Website:  "https://clinic-a.example.com",
	})
	require.NoError(t, err)

	got, err := st.GetClinic(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "(512) 555-9999", got.Phone)
	assert.Equal(t, "https://clinic-a.example.com", got.Website)
	// Untouched fields survive the patch.
	assert.Equal(t, "Clinic a", got.Name)
	assert.Equal(t, []string{"articulation", "stuttering"}, got.Services)
}

func TestSQLite_ApplyEnhancementMissingClinic(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.ApplyEnhancement(context.Background(), model.FieldEnhancement{
		ClinicID: "ghost",
		Phone:    "(000) 000-0000",
	})
	assert.Error(t, err)
}

func TestSQLite_CentersRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	centers := []model.PopulationCenter{
		{City: "Austin", State: "TX", Latitude: 30.2672, Longitude: -97.7431, Population: 961855},
		{City: "Boise", State: "ID", Latitude: 43.6150, Longitude: -116.2023, Population: 235684},
	}
	n, err := st.UpsertCenters(ctx, centers)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := st.ListCenters(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by population descending.
	assert.Equal(t, "Austin", got[0].City)

	// Upsert updates in place.
	centers[1].Population = 999999
	_, err = st.UpsertCenters(ctx, centers[1:])
	require.NoError(t, err)
	got, err = st.ListCenters(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Boise", got[0].City)
}
