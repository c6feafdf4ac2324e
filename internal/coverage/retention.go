package coverage

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/model"
)

const (
	topRetentionGlobal   = 5
	topRetentionPerState = 3
)

// costBonuses rewards accessible pricing in the retention composite.
var costBonuses = map[model.CostLevel]float64{
	model.CostFree:       25,
	model.CostLowCost:    20,
	model.CostMarketRate: 10,
}

// majorCities is the fixed urban-bonus table, keyed by lowercased city name.
var majorCities = map[string]bool{
	"new york": true, "los angeles": true, "chicago": true, "houston": true,
	"phoenix": true, "philadelphia": true, "san antonio": true, "san diego": true,
	"dallas": true, "jacksonville": true, "austin": true, "fort worth": true,
	"columbus": true, "charlotte": true, "indianapolis": true, "san francisco": true,
	"seattle": true, "denver": true, "oklahoma city": true, "nashville": true,
	"el paso": true, "washington": true, "boston": true, "las vegas": true,
	"portland": true, "detroit": true, "memphis": true, "louisville": true,
	"baltimore": true, "milwaukee": true, "albuquerque": true, "tucson": true,
	"fresno": true, "sacramento": true, "kansas city": true, "atlanta": true,
	"omaha": true, "colorado springs": true, "raleigh": true, "miami": true,
	"minneapolis": true, "tulsa": true, "wichita": true, "arlington": true,
	"aurora": true, "tampa": true, "new orleans": true, "cleveland": true,
	"honolulu": true, "anaheim": true,
}

// specializationRule maps a service tag to its display label.
type specializationRule struct {
	tag   string
	label string
}

// specializationRules is evaluated first-match-wins, in this order. The
// first offered service in the list decides the label, not the most
// specific one.
var specializationRules = []specializationRule{
	{"feeding-therapy", "Feeding & Swallowing"},
	{"apraxia", "Childhood Apraxia of Speech"},
	{"voice-therapy", "Voice Therapy"},
	{"stuttering", "Stuttering & Fluency"},
	{"social-skills", "Social Communication"},
	{"language-therapy", "Language Development"},
}

const defaultSpecialization = "General Speech Therapy"

// ScoreClinic computes the retention composite for one clinic. RawScore
// is unbounded and used only for ranking; the published rate and rating
// are clamped to their documented ranges.
func ScoreClinic(c model.ClinicRecord) model.RetentionScore {
	raw := float64(len(c.Services)) * 8
	if bonus, ok := costBonuses[c.Cost]; ok {
		raw += bonus
	} else {
		raw += costBonuses[model.CostMarketRate]
	}
	if c.Teletherapy {
		raw += 15
	}
	if majorCities[strings.ToLower(c.City)] {
		raw += 10
	}

	rate := math.Min(96, 85+raw/100*11)
	rating := clamp(4.2+raw/100*0.8, 4.2, 5.0)

	return model.RetentionScore{
		ClinicID:              c.ID,
		ClinicName:            c.Name,
		City:                  c.City,
		State:                 c.State,
		RetentionRatePercent:  rate,
		Specialization:        specialization(c),
		AvgRating:             rating,
		EstimatedPatientCount: 75 + int(raw)*3,
		RawScore:              raw,
	}
}

// specialization picks the display label by first match against the
// priority list.
func specialization(c model.ClinicRecord) string {
	for _, rule := range specializationRules {
		if c.HasService(rule.tag) {
			return rule.label
		}
	}
	return defaultSpecialization
}

// TopRetention ranks verified clinics by raw retention score, descending.
// With a state filter the candidate pool is restricted first and the top
// 3 are returned; without one the top 5 are returned.
func TopRetention(clinics []model.ClinicRecord, state string) []model.RetentionScore {
	limit := topRetentionGlobal
	if state != "" {
		limit = topRetentionPerState
	}

	var scores []model.RetentionScore
	for i := range clinics {
		if !clinics[i].Verified {
			continue
		}
		if state != "" && !strings.EqualFold(clinics[i].State, state) {
			continue
		}
		scores = append(scores, ScoreClinic(clinics[i]))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].RawScore > scores[j].RawScore
	})

	if len(scores) > limit {
		scores = scores[:limit]
	}

	zap.L().Debug("coverage: retention ranking complete",
		zap.String("state", state),
		zap.Int("ranked", len(scores)),
	)

	return scores
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
