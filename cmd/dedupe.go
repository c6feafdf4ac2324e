package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/theramap/insights-cli/internal/dedupe"
	"github.com/theramap/insights-cli/internal/store"
)

var dedupeThreshold float64

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find likely duplicate clinic records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "dedupe")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		clinics, err := st.ListClinics(ctx, store.ClinicFilter{})
		if err != nil {
			return eris.Wrap(err, "list clinics")
		}

		threshold := dedupeThreshold
		if threshold == 0 {
			threshold = cfg.Dedupe.SimilarityThreshold
		}

		return printJSON(dedupe.NewDetector(threshold).Find(clinics))
	},
}

func init() {
	dedupeCmd.Flags().Float64Var(&dedupeThreshold, "threshold", 0, "similarity threshold (default from config)")
	rootCmd.AddCommand(dedupeCmd)
}
