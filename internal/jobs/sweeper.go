// Package jobs hosts background workers that run alongside the HTTP server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
)

// Sweeper periodically marks overdue reservations as no-shows.
type Sweeper struct {
	cmds     commands.SweepCommands
	interval time.Duration
	enabled  bool
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(cmds commands.SweepCommands, cfg config.SweeperConfig, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cmds:     cmds,
		interval: cfg.Interval,
		enabled:  cfg.Enabled,
		logger:   logger,
	}
}

// Start launches the sweep loop. It is a no-op when the sweeper is disabled.
func (s *Sweeper) Start() {
	if !s.enabled {
		s.logger.Info("no-show sweeper disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	s.logger.Info("no-show sweeper started", slog.Duration("interval", s.interval))
}

// Stop signals the loop to exit and waits for the in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("no-show sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.cmds.RunNoShowSweep(ctx)
	if err != nil {
		s.logger.Error("no-show sweep failed", slog.String("error", err.Error()))
		return
	}
	if result.Marked > 0 {
		s.logger.Info("no-show sweep completed", slog.Int("marked", result.Marked))
	}
}
