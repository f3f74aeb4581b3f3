package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fundo/events"
	"fundo/models"
	"fundo/pix"
)

// txidMaxLen is the EMV limit on the additional data reference field
const txidMaxLen = 25

type depositService struct {
	uowFactory  UnitOfWorkFactory
	depositRepo PixDepositRepository
	cotistaRepo CotistaRepository
	receiver    pix.Receiver
	bus         *events.Bus
}

// NewDepositService creates the PIX deposit request service
func NewDepositService(uowFactory UnitOfWorkFactory, depositRepo PixDepositRepository, cotistaRepo CotistaRepository, receiver pix.Receiver, bus *events.Bus) DepositService {
	return &depositService{
		uowFactory:  uowFactory,
		depositRepo: depositRepo,
		cotistaRepo: cotistaRepo,
		receiver:    receiver,
		bus:         bus,
	}
}

// RequestDeposit registers a pending deposit and generates the static PIX
// code the investor pays. Confirmation happens off-band when the payment
// lands on the fund's account.
func (s *depositService) RequestDeposit(ctx context.Context, cotistaID int64, amount decimal.Decimal) (*models.PixDeposit, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	amount = amount.Round(2)

	cotista, err := s.cotistaRepo.GetByID(ctx, cotistaID)
	if err != nil {
		return nil, err
	}
	if cotista == nil {
		return nil, ErrNotFound
	}

	txid := newTxID()
	deposit := &models.PixDeposit{
		CotistaID:       cotistaID,
		RequestedAmount: amount,
		Status:          models.DepositStatusPending,
		TxID:            txid,
		Payload:         pix.StaticPayload(s.receiver, amount, txid),
	}

	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, err
	}

	s.bus.Emit(ctx, events.DepositRequestedEvent{
		CotistaID: cotistaID,
		DepositID: deposit.ID,
		TxID:      txid,
		Amount:    amount,
	})

	return deposit, nil
}

// ListDeposits returns a cotista's deposit requests, newest first
func (s *depositService) ListDeposits(ctx context.Context, cotistaID int64) ([]*models.PixDeposit, error) {
	return s.depositRepo.GetByCotista(ctx, cotistaID)
}

// ConfirmDeposit settles a pending deposit once the PIX payment landed on
// the fund's account. The status flip and the ledger contribution commit
// together or not at all.
func (s *depositService) ConfirmDeposit(ctx context.Context, depositID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deposit, err := uow.PixDeposits().GetByID(ctx, depositID)
	if err != nil {
		return err
	}
	if deposit == nil {
		return ErrNotFound
	}
	if deposit.Status != models.DepositStatusPending {
		return fmt.Errorf("%w: deposit is %s, not pending", ErrInvalidInput, deposit.Status)
	}

	err = uow.PixDeposits().SetStatus(ctx, depositID,
		models.DepositStatusPending, models.DepositStatusConfirmed)
	if err != nil {
		return err
	}

	movement := &models.CotistaMovement{
		CotistaID: deposit.CotistaID,
		Type:      models.MovementTypeContribution,
		Amount:    deposit.RequestedAmount,
	}
	if err := uow.Movements().Record(ctx, movement); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"depositId": depositID,
		"cotistaId": deposit.CotistaID,
	}).Info("Deposit confirmed")

	return nil
}

// CancelDeposit voids a pending deposit. No ledger movement is written.
func (s *depositService) CancelDeposit(ctx context.Context, depositID int64) error {
	deposit, err := s.depositRepo.GetByID(ctx, depositID)
	if err != nil {
		return err
	}
	if deposit == nil {
		return ErrNotFound
	}
	if deposit.Status != models.DepositStatusPending {
		return fmt.Errorf("%w: deposit is %s, not pending", ErrInvalidInput, deposit.Status)
	}

	return s.depositRepo.SetStatus(ctx, depositID,
		models.DepositStatusPending, models.DepositStatusCanceled)
}

// newTxID derives a payment reference from a UUID, trimmed to the EMV limit
func newTxID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return id[:txidMaxLen]
}
