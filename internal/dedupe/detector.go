// Package dedupe finds likely duplicate clinic records via weighted
// field similarity.
package dedupe

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/geo"
	"github.com/theramap/insights-cli/internal/model"
	"github.com/theramap/insights-cli/internal/similarity"
)

// DefaultThreshold is the similarity above which a pair is reported.
const DefaultThreshold = 0.8

// sameLocationMiles is the coordinate distance below which two records
// are treated as the same physical site.
const sameLocationMiles = 0.5

// Field weights. A weight only enters the denominator when both records
// carry the field, so similarity stays normalized to [0, 1].
const (
	nameWeight      = 0.4
	cityStateWeight = 0.3
	phoneWeight     = 0.2
	proximityWeight = 0.1
)

// Detector runs the pairwise duplicate scan.
type Detector struct {
	threshold float64
}

// NewDetector creates a Detector. A non-positive threshold falls back to
// the default.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Find compares every unordered pair in the snapshot and returns
// candidates above the threshold, ranked by similarity descending.
// The pass is a deliberate O(n²) scan; directory snapshots are small
// enough that blocking is not worth the loss of transparency.
func (d *Detector) Find(clinics []model.ClinicRecord) []model.DuplicateCandidate {
	var candidates []model.DuplicateCandidate

	for i := 0; i < len(clinics); i++ {
		for j := i + 1; j < len(clinics); j++ {
			sim := PairSimilarity(&clinics[i], &clinics[j])
			if sim > d.threshold {
				candidates = append(candidates, model.DuplicateCandidate{
					First:      clinics[i],
					Second:     clinics[j],
					Similarity: sim,
				})
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Similarity > candidates[b].Similarity
	})

	zap.L().Info("dedupe: scan complete",
		zap.Int("clinics", len(clinics)),
		zap.Int("candidates", len(candidates)),
		zap.Float64("threshold", d.threshold),
	)

	return candidates
}

// PairSimilarity returns the weighted field similarity of two records in
// [0, 1]. Fields missing on either side are excluded from both the score
// and the denominator; two records with no comparable fields score 0.
func PairSimilarity(a, b *model.ClinicRecord) float64 {
	var score, weight float64

	// Name similarity, always comparable.
	nameA := strings.ToLower(strings.TrimSpace(a.Name))
	nameB := strings.ToLower(strings.TrimSpace(b.Name))
	score += similarity.StringSimilarity(nameA, nameB) * nameWeight
	weight += nameWeight

	// City+state is a binary match, not scaled by closeness.
	if strings.EqualFold(a.City, b.City) && strings.EqualFold(a.State, b.State) {
		score += cityStateWeight
	}
	weight += cityStateWeight

	// Phones compare by digits only, and only when both are present.
	phoneA := digitsOnly(a.Phone)
	phoneB := digitsOnly(b.Phone)
	if phoneA != "" && phoneB != "" {
		if phoneA == phoneB {
			score += phoneWeight
		}
		weight += phoneWeight
	}

	// Physical proximity, only when both have coordinates.
	if a.HasCoordinates() && b.HasCoordinates() {
		d := geo.DistanceMiles(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		if d < sameLocationMiles {
			score += proximityWeight
		}
		weight += proximityWeight
	}

	if weight == 0 {
		return 0
	}
	return score / weight
}

// digitsOnly strips every non-digit rune from a phone number.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
