package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundo/database"
	"fundo/events"
	"fundo/service"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	userRepo        service.UserRepository
	roleRepo        service.RoleRepository
	cotistaRepo     service.CotistaRepository
	movementRepo    service.MovementRepository
	pixDepositRepo  service.PixDepositRepository
	boxRepo         service.SavingsBoxRepository
	boxSnapshotRepo service.BoxSnapshotRepository
	boxMovementRepo service.BoxMovementRepository
	jobRunRepo      service.JobRunRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.roleRepo = newRoleRepositoryWithTx(tx)
	u.cotistaRepo = newCotistaRepositoryWithTx(tx)
	u.movementRepo = newMovementRepositoryWithTx(tx)
	u.pixDepositRepo = newPixDepositRepositoryWithTx(tx)
	u.boxRepo = newSavingsBoxRepositoryWithTx(tx)
	u.boxSnapshotRepo = newBoxSnapshotRepositoryWithTx(tx)
	u.boxMovementRepo = newBoxMovementRepositoryWithTx(tx)
	u.jobRunRepo = newJobRunRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func (u *unitOfWork) Users() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

func (u *unitOfWork) Roles() service.RoleRepository {
	if u.roleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roleRepo
}

func (u *unitOfWork) Cotistas() service.CotistaRepository {
	if u.cotistaRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.cotistaRepo
}

func (u *unitOfWork) Movements() service.MovementRepository {
	if u.movementRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.movementRepo
}

func (u *unitOfWork) PixDeposits() service.PixDepositRepository {
	if u.pixDepositRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pixDepositRepo
}

func (u *unitOfWork) Boxes() service.SavingsBoxRepository {
	if u.boxRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.boxRepo
}

func (u *unitOfWork) BoxSnapshots() service.BoxSnapshotRepository {
	if u.boxSnapshotRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.boxSnapshotRepo
}

func (u *unitOfWork) BoxMovements() service.BoxMovementRepository {
	if u.boxMovementRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.boxMovementRepo
}

func (u *unitOfWork) JobRuns() service.JobRunRepository {
	if u.jobRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.jobRunRepo
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
