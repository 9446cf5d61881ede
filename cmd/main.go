package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"tablebook/cmd/bootstrap"
	"tablebook/internal/infra/db"
	"tablebook/internal/infra/uow"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func init() {
	// Never expose debug output unless explicitly asked for
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func main() {
	root := &cobra.Command{
		Use:   "tablebook",
		Short: "Restaurant reservation and table management backend",
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSweepCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// @title           tablebook
// @version         1.0
// @description     Reservation timeline, waitlist and customer API

// @BasePath  /
// @schemes http https
// @in header
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server and background sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := fx.New(
				bootstrap.Module,
				fx.Provide(
					func() *gin.Engine {
						return gin.New()
					},
				),
				fx.Invoke(
					startServer,
				),
			)

			if err := app.Start(cmd.Context()); err != nil {
				return err
			}

			<-app.Done()

			if err := app.Stop(context.Background()); err != nil {
				slog.Error("failed to stop application", "error", err)
			}
			return nil
		},
	}
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			listenAddr := ":" + cfg.Server.Port
			logger.Info("starting server", "address", listenAddr, "mode", gin.Mode())
			go func() {
				if err := engine.Run(listenAddr); err != nil {
					logger.Error("server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("shutting down server")
			return nil
		},
	})
}

// newSweepCmd runs a single no-show sweep and exits. Useful for cron-style
// deployments where the in-process sweeper is disabled.
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark overdue reservations as no-shows once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			pool, cleanup, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}
			defer cleanup()

			logger := bootstrap.NewLogger(cfg)
			sweep := commands.NewSweepCommands(
				uow.NewPostgresUnitOfWork(pool),
				shared.NopInvalidator{},
				cfg.Schedule,
				clock.NewRealClock(),
				logger,
			)

			result, err := sweep.RunNoShowSweep(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "marked %d reservations as no-show\n", result.Marked)
			return nil
		},
	}
}
