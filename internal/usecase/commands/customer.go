package commands

import (
	"context"

	"tablebook/internal/domain/customer"
	reqdto "tablebook/internal/handler/dto/request"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrDuplicateCustomerPhone = errs.New("customer with this phone already exists")

type CustomerCommands interface {
	Create(ctx context.Context, restaurantID uuid.UUID, req reqdto.CreateCustomerRequest) (uuid.UUID, error)
	Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateCustomerRequest) error
	// LinkReservation attaches a profile to an existing reservation so later
	// lifecycle transitions update the profile's stats.
	LinkReservation(ctx context.Context, restaurantID, customerID, reservationID uuid.UUID) error
}

type customerCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewCustomerCommands(uow shared.UnitOfWork, clk clock.Clock) CustomerCommands {
	return &customerCommandsImpl{uow: uow, clock: clk}
}

func (c *customerCommandsImpl) Create(ctx context.Context, restaurantID uuid.UUID, req reqdto.CreateCustomerRequest) (uuid.UUID, error) {
	profile, err := customer.NewCustomer(restaurantID, req.Name, req.Phone)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}
	if err := profile.UpdateProfile(req.Name, req.Notes, req.Tags, c.clock.Now()); err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		if createErr := tx.Customers().Create(ctx, profile); createErr != nil {
			if infra.IsKind(createErr, infra.KindDuplicateKey) {
				return errs.Mark(createErr, ErrDuplicateCustomerPhone)
			}
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return profile.ID(), nil
}

func (c *customerCommandsImpl) Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateCustomerRequest) error {
	now := c.clock.Now()
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		profile, findErr := tx.Customers().FindByID(ctx, restaurantID, id)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrCustomerNotFound
			}
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}

		if updErr := profile.UpdateProfile(req.Name, req.Notes, req.Tags, now); updErr != nil {
			return errs.Mark(updErr, ErrDomainValidation)
		}
		if saveErr := tx.Customers().Update(ctx, profile); saveErr != nil {
			return errs.Mark(saveErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *customerCommandsImpl) LinkReservation(ctx context.Context, restaurantID, customerID, reservationID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		if _, findErr := tx.Customers().FindByID(ctx, restaurantID, customerID); findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrCustomerNotFound
			}
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}

		res, findErr := tx.Reservations().FindByID(ctx, restaurantID, reservationID)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}

		res.LinkCustomer(customerID)
		if saveErr := tx.Reservations().Update(ctx, res); saveErr != nil {
			return errs.Mark(saveErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
}
