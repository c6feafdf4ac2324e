package model

import (
	"encoding/json"
	"math"
	"time"
)

// InsightKind classifies a population center relative to the clinic network.
type InsightKind string

const (
	InsightCoverageGap      InsightKind = "coverage_gap"
	InsightHighDensity      InsightKind = "high_density"
	InsightOptimalPlacement InsightKind = "optimal_placement"
)

// CoverageInsight is the derived coverage picture for one population center.
// Recomputed fresh on every analysis run, never mutated in place.
type CoverageInsight struct {
	Kind                 InsightKind      `json:"kind"`
	Center               PopulationCenter `json:"center"`
	NearestClinicMiles   float64          `json:"nearest_clinic_miles"`
	ClinicsWithin15Miles int              `json:"clinics_within_15_miles"`
	ClinicsWithin30Miles int              `json:"clinics_within_30_miles"`
	DemandScore          float64          `json:"demand_score"`
	Recommendation       string           `json:"recommendation"`
}

// MarshalJSON encodes infinite values as null. A center with no clinics
// in the snapshot carries an infinite nearest distance (and demand score),
// which encoding/json cannot represent as a number.
func (ci CoverageInsight) MarshalJSON() ([]byte, error) {
	type raw CoverageInsight
	aux := struct {
		raw
		NearestClinicMiles *float64 `json:"nearest_clinic_miles"`
		DemandScore        *float64 `json:"demand_score"`
	}{
		raw:                raw(ci),
		NearestClinicMiles: finiteOrNil(ci.NearestClinicMiles),
		DemandScore:        finiteOrNil(ci.DemandScore),
	}
	return json.Marshal(aux)
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// CoverageReport is the full output of one coverage analysis pass.
type CoverageReport struct {
	ID                   string            `json:"id"`
	Underserved          []CoverageInsight `json:"underserved"`
	Overserved           []CoverageInsight `json:"overserved"`
	Optimal              []CoverageInsight `json:"optimal"`
	TotalCoveragePercent float64           `json:"total_coverage_percent"`
	CentersAnalyzed      int               `json:"centers_analyzed"`
	ClinicsAnalyzed      int               `json:"clinics_analyzed"`
	GeneratedAt          time.Time         `json:"generated_at"`
}

// RetentionScore is the heuristic quality ranking for one verified clinic.
// RawScore is unbounded and used only for ordering.
type RetentionScore struct {
	ClinicID              string  `json:"clinic_id"`
	ClinicName            string  `json:"clinic_name"`
	City                  string  `json:"city"`
	State                 string  `json:"state"`
	RetentionRatePercent  float64 `json:"retention_rate_percent"`
	Specialization        string  `json:"specialization"`
	AvgRating             float64 `json:"avg_rating"`
	EstimatedPatientCount int     `json:"estimated_patient_count"`
	RawScore              float64 `json:"-"`
}

// DuplicateCandidate is a pair of clinic records whose weighted field
// similarity exceeds the duplicate threshold. Each unordered pair is
// reported at most once.
type DuplicateCandidate struct {
	First      ClinicRecord `json:"first"`
	Second     ClinicRecord `json:"second"`
	Similarity float64      `json:"similarity"`
}

// FieldEnhancement is a proposed patch to a clinic record. Only the
// non-zero fields change when the patch is applied; an enhancement is
// never emitted with no changed fields.
type FieldEnhancement struct {
	ClinicID   string   `json:"clinic_id"`
	Name       string   `json:"name,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Email      string   `json:"email,omitempty"`
	Website    string   `json:"website,omitempty"`
	Services   []string `json:"services,omitempty"`
	Confidence float64  `json:"confidence"`
}

// IsEmpty reports whether the enhancement proposes no changes.
func (e *FieldEnhancement) IsEmpty() bool {
	return e.Name == "" && e.Phone == "" && e.Email == "" &&
		e.Website == "" && len(e.Services) == 0
}
