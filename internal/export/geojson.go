// Package export renders analysis output as GeoJSON for mapping tools.
package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/theramap/insights-cli/internal/model"
)

// InsightFeatures converts a coverage report into a point feature per
// analyzed center, tagged with its classification and recommendation.
func InsightFeatures(report *model.CoverageReport) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}

	groups := [][]model.CoverageInsight{report.Underserved, report.Overserved, report.Optimal}
	for _, group := range groups {
		for _, ins := range group {
			props := map[string]any{
				"kind":                    string(ins.Kind),
				"city":                    ins.Center.City,
				"state":                   ins.Center.State,
				"population":              ins.Center.Population,
				"clinics_within_15_miles": ins.ClinicsWithin15Miles,
				"clinics_within_30_miles": ins.ClinicsWithin30Miles,
				"recommendation":          ins.Recommendation,
			}
			if !math.IsInf(ins.NearestClinicMiles, 0) {
				props["nearest_clinic_miles"] = ins.NearestClinicMiles
			}
			if !math.IsInf(ins.DemandScore, 0) {
				props["demand_score"] = ins.DemandScore
			}

			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry: geom.NewPointFlat(geom.XY,
					[]float64{ins.Center.Longitude, ins.Center.Latitude}).SetSRID(4326),
				Properties: props,
			})
		}
	}

	return fc
}

// ClinicFeatures converts clinic records into point features. Clinics
// without coordinates are skipped.
func ClinicFeatures(clinics []model.ClinicRecord) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}

	for i := range clinics {
		c := &clinics[i]
		if !c.HasCoordinates() {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID: c.ID,
			Geometry: geom.NewPointFlat(geom.XY,
				[]float64{*c.Longitude, *c.Latitude}).SetSRID(4326),
			Properties: map[string]any{
				"name":        c.Name,
				"city":        c.City,
				"state":       c.State,
				"services":    c.Services,
				"cost_level":  string(c.Cost),
				"teletherapy": c.Teletherapy,
				"verified":    c.Verified,
			},
		})
	}

	return fc
}

// Write encodes a feature collection as GeoJSON.
func Write(w io.Writer, fc *geojson.FeatureCollection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return nil
}
