package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/coverage"
	"github.com/theramap/insights-cli/internal/export"
	"github.com/theramap/insights-cli/internal/store"
)

var (
	exportOutPath string
	exportClinics bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export insights or clinics as GeoJSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "export")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		clinics, err := st.ListClinics(ctx, store.ClinicFilter{})
		if err != nil {
			return eris.Wrap(err, "list clinics")
		}

		out := os.Stdout
		if exportOutPath != "" {
			f, err := os.Create(exportOutPath)
			if err != nil {
				return eris.Wrapf(err, "create %s", exportOutPath)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		if exportClinics {
			return export.Write(out, export.ClinicFeatures(clinics))
		}

		centers, err := loadCenters(ctx, st)
		if err != nil {
			return eris.Wrap(err, "load centers")
		}
		report := coverage.NewAnalyzer(centers).Analyze(clinics)

		zap.L().Info("exporting insights",
			zap.Int("centers", report.CentersAnalyzed),
			zap.String("out", exportOutPath),
		)
		return export.Write(out, export.InsightFeatures(report))
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutPath, "out", "", "output path (default stdout)")
	exportCmd.Flags().BoolVar(&exportClinics, "clinics", false, "export clinic points instead of insights")
	rootCmd.AddCommand(exportCmd)
}
