package components

import (
	"context"

	"tablebook/internal/jobs"

	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Provide(
		jobs.NewSweeper,
	),
	fx.Invoke(registerSweeper),
)

func registerSweeper(lc fx.Lifecycle, sweeper *jobs.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
