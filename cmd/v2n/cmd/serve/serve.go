package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-notes/cmd/v2n/cmd/cmdutil"
	"media-notes/internal/api/server"
	v1routes "media-notes/internal/api/v1/routes"
	"media-notes/internal/api/v1/services"
)

var shutdownTimeout time.Duration

func init() {
	Cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second,
		"How long running requests may take to finish after a shutdown signal")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API

- Refunds reservations left held by a previous crash
- Serves /api/v1, /health, /metrics and /swagger`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.Runtime()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := rt.Settings.ValidateServer(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := cmdutil.SignalContext()
		defer stop()

		if _, err := rt.Ledger.RecoverStale(ctx, rt.Settings.Credits.StaleReservationAge); err != nil {
			rt.Logger.Warn("stale reservation recovery failed", zap.Error(err))
		}

		container := &v1routes.ServiceContainer{
			JobService:           services.NewJobService(rt.Orchestrator),
			TranscriptionService: services.NewTranscriptionService(rt.Store),
			CreditService:        services.NewCreditService(rt.Ledger, rt.Settings.Credits.TopUpCredits, rt.Logger),
		}
		srv := server.NewServer(server.ConfigFromSettings(rt.Settings), container, rt.Registry, rt.Logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
