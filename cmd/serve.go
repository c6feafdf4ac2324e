package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/api"
	"github.com/theramap/insights-cli/internal/coverage"
	"github.com/theramap/insights-cli/internal/dedupe"
	"github.com/theramap/insights-cli/internal/insights"
	"github.com/theramap/insights-cli/internal/model"
	"github.com/theramap/insights-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the insights API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		st, err := openStore(ctx, "serve")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		cache := insights.NewCache(func(ctx context.Context) (*model.CoverageReport, error) {
			clinics, err := st.ListClinics(ctx, store.ClinicFilter{})
			if err != nil {
				return nil, eris.Wrap(err, "list clinics")
			}
			centers, err := loadCenters(ctx, st)
			if err != nil {
				return nil, eris.Wrap(err, "load centers")
			}
			return coverage.NewAnalyzer(centers).Analyze(clinics), nil
		}, cfg.Analysis.CacheTTL())

		// Warm the cache so the first request is served hot. A failure
		// here is not fatal; the first read retries.
		if _, err := cache.Refresh(ctx); err != nil {
			zap.L().Warn("initial analysis failed", zap.Error(err))
		}

		srv := api.NewServer(cfg.Server, st, cache, dedupe.NewDetector(cfg.Dedupe.SimilarityThreshold))

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(),
				time.Duration(cfg.Server.ShutdownWaitSecs)*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("shutdown", zap.Error(err))
			}
		}()

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
