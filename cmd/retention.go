package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/theramap/insights-cli/internal/coverage"
	"github.com/theramap/insights-cli/internal/store"
)

var retentionState string

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Rank verified clinics by estimated patient retention",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "retention")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		clinics, err := st.ListClinics(ctx, store.ClinicFilter{VerifiedOnly: true})
		if err != nil {
			return eris.Wrap(err, "list clinics")
		}

		return printJSON(coverage.TopRetention(clinics, retentionState))
	},
}

func init() {
	retentionCmd.Flags().StringVar(&retentionState, "state", "", "restrict ranking to one state")
	rootCmd.AddCommand(retentionCmd)
}
