// Package coverage scores geographic coverage of the clinic network
// against population centers and ranks clinics by retention quality.
package coverage

import (
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theramap/insights-cli/internal/geo"
	"github.com/theramap/insights-cli/internal/model"
)

const (
	// adequateMiles is the distance beyond which a population center is a
	// coverage gap.
	adequateMiles = 30.0

	// nearbyMiles bounds the local clinic count used for density checks.
	nearbyMiles = 15.0

	// highDensityCount is the local clinic count above which a center is
	// considered saturated.
	highDensityCount = 3

	maxOverservedReported = 5
	maxOptimalReported    = 8
)

// popPrinter renders populations with thousands separators.
var popPrinter = message.NewPrinter(language.English)

// Analyzer classifies population centers against a clinic snapshot.
type Analyzer struct {
	centers []model.PopulationCenter
}

// NewAnalyzer creates an Analyzer over the given population center table.
// An empty table falls back to the built-in one.
func NewAnalyzer(centers []model.PopulationCenter) *Analyzer {
	if len(centers) == 0 {
		centers = geo.DefaultCenters()
	}
	owned := make([]model.PopulationCenter, len(centers))
	copy(owned, centers)
	return &Analyzer{centers: owned}
}

// located is a clinic with non-null coordinates.
type located struct {
	lat float64
	lon float64
}

// Analyze runs one full coverage pass over the supplied clinic snapshot.
// Clinics without coordinates are excluded from all distance math. An
// empty snapshot is not an error: every center classifies as a coverage
// gap and total coverage is zero.
func (a *Analyzer) Analyze(clinics []model.ClinicRecord) *model.CoverageReport {
	points := make([]located, 0, len(clinics))
	for i := range clinics {
		if clinics[i].HasCoordinates() {
			points = append(points, located{lat: *clinics[i].Latitude, lon: *clinics[i].Longitude})
		}
	}

	insights := make([]model.CoverageInsight, len(a.centers))

	// Centers are independent; fan out across cores. Each worker writes
	// only its own index, so the result is deterministic.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range a.centers {
		i := i
		g.Go(func() error {
			insights[i] = analyzeCenter(a.centers[i], points)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	report := buildReport(insights, a.centers, len(points))

	zap.L().Info("coverage: analysis complete",
		zap.String("report_id", report.ID),
		zap.Int("centers", len(a.centers)),
		zap.Int("clinics_with_coords", len(points)),
		zap.Int("underserved", len(report.Underserved)),
		zap.Float64("total_coverage_percent", report.TotalCoveragePercent),
	)

	return report
}

// analyzeCenter computes the coverage insight for a single population center.
func analyzeCenter(center model.PopulationCenter, points []located) model.CoverageInsight {
	nearest := math.Inf(1)
	within15 := 0
	within30 := 0

	for _, p := range points {
		d := geo.DistanceMiles(center.Latitude, center.Longitude, p.lat, p.lon)
		if d < nearest {
			nearest = d
		}
		if d <= nearbyMiles {
			within15++
		}
		if d <= adequateMiles {
			within30++
		}
	}

	demand := float64(center.Population) / 100000 * math.Max(1, nearest/10)

	// First-match classification: gap, then density, then optimal.
	var kind model.InsightKind
	switch {
	case nearest > adequateMiles:
		kind = model.InsightCoverageGap
	case within15 > highDensityCount:
		kind = model.InsightHighDensity
	default:
		kind = model.InsightOptimalPlacement
	}

	return model.CoverageInsight{
		Kind:                 kind,
		Center:               center,
		NearestClinicMiles:   nearest,
		ClinicsWithin15Miles: within15,
		ClinicsWithin30Miles: within30,
		DemandScore:          demand,
		Recommendation:       recommendation(kind, center, nearest, within15, within30),
	}
}

// recommendation selects the report message for a classified center.
func recommendation(kind model.InsightKind, center model.PopulationCenter, nearest float64, within15, within30 int) string {
	switch kind {
	case model.InsightCoverageGap:
		if math.IsInf(nearest, 1) {
			return popPrinter.Sprintf(
				"Coverage gap: %s (%d residents) has no clinics in the network. High-priority expansion target.",
				center.City, center.Population)
		}
		return popPrinter.Sprintf(
			"Coverage gap: %s (%d residents) is %.1f miles from the nearest clinic. High-priority expansion target.",
			center.City, center.Population, nearest)
	case model.InsightHighDensity:
		return popPrinter.Sprintf(
			"%s already has %d clinics within 15 miles. Market is saturated; prioritize retention over expansion.",
			center.City, within15)
	default:
		if within15 == 0 && within30 > 0 {
			return popPrinter.Sprintf(
				"%s (%d residents) relies on a clinic %.1f miles away. Moderate priority for a closer location.",
				center.City, center.Population, nearest)
		}
		return popPrinter.Sprintf(
			"%s (%d residents) is a growth opportunity with %d clinics within 15 miles.",
			center.City, center.Population, within15)
	}
}

// buildReport partitions insights, applies the reporting sort/truncate
// rules, and computes the population-weighted coverage percentage.
func buildReport(insights []model.CoverageInsight, centers []model.PopulationCenter, clinicCount int) *model.CoverageReport {
	report := &model.CoverageReport{
		ID:              uuid.New().String(),
		CentersAnalyzed: len(centers),
		ClinicsAnalyzed: clinicCount,
		GeneratedAt:     time.Now().UTC(),
	}

	var totalPop, coveredPop int64
	for _, ins := range insights {
		totalPop += int64(ins.Center.Population)
		if ins.NearestClinicMiles <= adequateMiles {
			coveredPop += int64(ins.Center.Population)
		}

		switch ins.Kind {
		case model.InsightCoverageGap:
			report.Underserved = append(report.Underserved, ins)
		case model.InsightHighDensity:
			report.Overserved = append(report.Overserved, ins)
		default:
			report.Optimal = append(report.Optimal, ins)
		}
	}

	sortByDemand(report.Underserved)
	sortByDemand(report.Optimal)

	// Overserved keeps insertion order before truncation. The upstream
	// report has always read this way, so it stays unsorted.
	if len(report.Overserved) > maxOverservedReported {
		report.Overserved = report.Overserved[:maxOverservedReported]
	}
	if len(report.Optimal) > maxOptimalReported {
		report.Optimal = report.Optimal[:maxOptimalReported]
	}

	if totalPop > 0 {
		report.TotalCoveragePercent = float64(coveredPop) / float64(totalPop) * 100
	}

	return report
}

func sortByDemand(insights []model.CoverageInsight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].DemandScore > insights[j].DemandScore
	})
}
