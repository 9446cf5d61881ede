package commands

import (
	"context"

	"tablebook/internal/domain/table"
	reqdto "tablebook/internal/handler/dto/request"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrTableInUse         = errs.New("table has active reservations")
	ErrDuplicateTableName = errs.New("table name already in use")
)

type TableCommands interface {
	Create(ctx context.Context, restaurantID uuid.UUID, req reqdto.CreateTableRequest) (uuid.UUID, error)
	Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateTableRequest) error
	// Delete refuses while any booked, confirmed or seated reservation still
	// references the table.
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

type tableCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewTableCommands(uow shared.UnitOfWork, clk clock.Clock) TableCommands {
	return &tableCommandsImpl{uow: uow, clock: clk}
}

func (t *tableCommandsImpl) Create(ctx context.Context, restaurantID uuid.UUID, req reqdto.CreateTableRequest) (uuid.UUID, error) {
	tbl, err := table.NewTable(restaurantID, req.Name, req.Capacity, table.Shape(req.Shape))
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	err = t.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		if createErr := tx.Tables().Create(ctx, tbl); createErr != nil {
			if infra.IsKind(createErr, infra.KindDuplicateKey) {
				return errs.Mark(createErr, ErrDuplicateTableName)
			}
			return errs.Mark(createErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return tbl.ID(), nil
}

func (t *tableCommandsImpl) Update(ctx context.Context, restaurantID, id uuid.UUID, req reqdto.UpdateTableRequest) error {
	now := t.clock.Now()
	return t.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		tbl, findErr := tx.Tables().FindByID(ctx, restaurantID, id)
		if findErr != nil {
			if infra.IsKind(findErr, infra.KindNotFound) {
				return ErrTableNotFound
			}
			return errs.Mark(findErr, ErrDatabaseOperationFailed)
		}

		if renameErr := tbl.Rename(req.Name, req.Capacity, table.Shape(req.Shape), now); renameErr != nil {
			return errs.Mark(renameErr, ErrDomainValidation)
		}
		if saveErr := tx.Tables().Update(ctx, tbl); saveErr != nil {
			if infra.IsKind(saveErr, infra.KindDuplicateKey) {
				return errs.Mark(saveErr, ErrDuplicateTableName)
			}
			return errs.Mark(saveErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (t *tableCommandsImpl) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	return t.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		tbl, lockErr := tx.Tables().LockByID(ctx, restaurantID, id)
		if lockErr != nil {
			if infra.IsKind(lockErr, infra.KindNotFound) {
				return ErrTableNotFound
			}
			return errs.Mark(lockErr, ErrDatabaseOperationFailed)
		}

		busy, checkErr := tx.Tables().HasBlockingReservations(ctx, tbl.ID())
		if checkErr != nil {
			return errs.Mark(checkErr, ErrDatabaseOperationFailed)
		}
		if busy {
			return ErrTableInUse
		}

		if deleteErr := tx.Tables().Delete(ctx, restaurantID, id); deleteErr != nil {
			if infra.IsKind(deleteErr, infra.KindForeignKeyViolated) {
				return ErrTableInUse
			}
			return errs.Mark(deleteErr, ErrDatabaseOperationFailed)
		}
		return nil
	})
}
