package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theramap/insights-cli/internal/fetcher"
	"github.com/theramap/insights-cli/internal/model"
)

var (
	importClinicsPath string
	importCentersPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import clinics and population centers from CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importClinicsPath == "" && importCentersPath == "" {
			return eris.New("at least one of --clinics or --centers is required")
		}

		st, err := openStore(ctx, "import")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		g, ctx := errgroup.WithContext(ctx)

		if importClinicsPath != "" {
			g.Go(func() error {
				clinics, err := readClinics(importClinicsPath)
				if err != nil {
					return err
				}
				n, err := st.UpsertClinics(ctx, clinics)
				if err != nil {
					return eris.Wrap(err, "upsert clinics")
				}
				zap.L().Info("clinics imported", zap.Int("count", n), zap.String("path", importClinicsPath))
				return nil
			})
		}

		if importCentersPath != "" {
			g.Go(func() error {
				centers, err := readCenters(importCentersPath)
				if err != nil {
					return err
				}
				n, err := st.UpsertCenters(ctx, centers)
				if err != nil {
					return eris.Wrap(err, "upsert centers")
				}
				zap.L().Info("centers imported", zap.Int("count", n), zap.String("path", importCentersPath))
				return nil
			})
		}

		return g.Wait()
	},
}

func readClinics(path string) ([]model.ClinicRecord, error) {
	if isXLSX(path) {
		return fetcher.ParseClinicsXLSX(path, fetcher.XLSXOptions{})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return fetcher.ParseClinicsCSV(f)
}

func readCenters(path string) ([]model.PopulationCenter, error) {
	if isXLSX(path) {
		return fetcher.ParseCentersXLSX(path, fetcher.XLSXOptions{})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return fetcher.ParseCentersCSV(f)
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func init() {
	importCmd.Flags().StringVar(&importClinicsPath, "clinics", "", "path to clinics CSV or XLSX")
	importCmd.Flags().StringVar(&importCentersPath, "centers", "", "path to population centers CSV or XLSX")
	rootCmd.AddCommand(importCmd)
}
