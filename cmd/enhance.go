package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/enhance"
	"github.com/theramap/insights-cli/internal/store"
)

var enhanceApply bool

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Extract missing contact fields and standardized names from notes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "enhance")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		clinics, err := st.ListClinics(ctx, store.ClinicFilter{})
		if err != nil {
			return eris.Wrap(err, "list clinics")
		}

		enhancements := enhance.EnhanceAll(clinics)

		if enhanceApply {
			applied := 0
			for _, e := range enhancements {
				if err := st.ApplyEnhancement(ctx, e); err != nil {
					zap.L().Warn("apply enhancement failed",
						zap.String("clinic_id", e.ClinicID),
						zap.Error(err),
					)
					continue
				}
				applied++
			}
			zap.L().Info("enhancements applied",
				zap.Int("proposed", len(enhancements)),
				zap.Int("applied", applied),
			)
		}

		return printJSON(enhancements)
	},
}

func init() {
	enhanceCmd.Flags().BoolVar(&enhanceApply, "apply", false, "write proposed patches back to the store")
	rootCmd.AddCommand(enhanceCmd)
}
