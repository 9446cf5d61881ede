package components

import (
	"log/slog"

	"tablebook/internal/infra/cache"
	"tablebook/internal/infra/readstore"
	"tablebook/internal/infra/uow"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/queries"
	"tablebook/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	readstoreModule,
	repositoryModule,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Reservation reads go through the redis timeline cache
		readstore.NewReservationReadStore,
		NewTimelineQueries,
		fx.Annotate(
			readstore.NewTableReadStore,
			fx.As(new(queries.TableQueries)),
		),
		fx.Annotate(
			readstore.NewCustomerReadStore,
			fx.As(new(queries.CustomerQueries)),
		),
		fx.Annotate(
			readstore.NewWaitlistReadStore,
			fx.As(new(queries.WaitlistQueries)),
		),
		fx.Annotate(
			readstore.NewAnalyticsReadStore,
			fx.As(new(queries.AnalyticsQueries)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserQueries)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		fx.Annotate(
			uow.NewPostgresUnitOfWork,
			fx.As(new(shared.UnitOfWork)),
		),
	),
)

func NewTimelineQueries(
	inner *readstore.ReservationReadStore,
	client *redis.Client,
	cfg config.Config,
	logger *slog.Logger,
) (queries.ReservationQueries, shared.TimelineInvalidator, error) {
	c, err := cache.NewTimelineCache(inner, client, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}
