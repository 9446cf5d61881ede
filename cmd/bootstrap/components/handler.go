package components

import (
	"tablebook/internal/handler"
	"tablebook/internal/handler/api"
	"tablebook/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewReservationHandler,
		api.NewTableHandler,
		api.NewCustomerHandler,
		api.NewWaitlistHandler,
		api.NewAnalyticsHandler,
		middleware.NewAuthMiddleware,
		middleware.NewRequestLogger,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	auth *api.AuthHandler,
	reservation *api.ReservationHandler,
	table *api.TableHandler,
	customer *api.CustomerHandler,
	waitlist *api.WaitlistHandler,
	analytics *api.AnalyticsHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:        auth,
		Reservation: reservation,
		Table:       table,
		Customer:    customer,
		Waitlist:    waitlist,
		Analytics:   analytics,
	}
}
