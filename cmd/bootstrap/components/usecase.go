package components

import (
	"tablebook/internal/pkg/clock"
	"tablebook/internal/usecase/commands"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewReservationCommands,
		commands.NewTableCommands,
		commands.NewCustomerCommands,
		commands.NewWaitlistCommands,
		commands.NewSweepCommands,
	),
)
