package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/coverage"
	"github.com/theramap/insights-cli/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run coverage analysis against population centers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "analyze")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		clinics, err := st.ListClinics(ctx, store.ClinicFilter{})
		if err != nil {
			return eris.Wrap(err, "list clinics")
		}
		centers, err := loadCenters(ctx, st)
		if err != nil {
			return eris.Wrap(err, "load centers")
		}

		report := coverage.NewAnalyzer(centers).Analyze(clinics)

		zap.L().Info("analysis complete",
			zap.Int("centers", report.CentersAnalyzed),
			zap.Int("clinics", report.ClinicsAnalyzed),
			zap.Int("underserved", len(report.Underserved)),
			zap.Float64("coverage_percent", report.TotalCoveragePercent),
		)
		return printJSON(report)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
