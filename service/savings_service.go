package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fundo/events"
	"fundo/models"
)

type savingsService struct {
	uowFactory UnitOfWorkFactory
	boxRepo    SavingsBoxRepository
}

// NewSavingsService creates the savings box service
func NewSavingsService(uowFactory UnitOfWorkFactory, boxRepo SavingsBoxRepository) SavingsService {
	return &savingsService{
		uowFactory: uowFactory,
		boxRepo:    boxRepo,
	}
}

// CreateBox creates a box together with its initial zero balance snapshot,
// so the box always has an authoritative balance from day one.
func (s *savingsService) CreateBox(ctx context.Context, cotistaID int64, name string, goal *decimal.Decimal) (*models.SavingsBox, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: box name is required", ErrInvalidInput)
	}
	if goal != nil && goal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: goal must be positive", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	box := &models.SavingsBox{
		CotistaID: cotistaID,
		Name:      name,
		GoalValue: goal,
		Active:    true,
	}
	if err := uow.Boxes().Create(ctx, box); err != nil {
		return nil, err
	}

	snapshot := &models.BoxSnapshot{
		BoxID:         box.ID,
		Balance:       decimal.Zero,
		ReferenceDate: today(),
	}
	if err := uow.BoxSnapshots().Create(ctx, snapshot); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return box, nil
}

// ListBoxes returns the cotista's active boxes with current balances
func (s *savingsService) ListBoxes(ctx context.Context, cotistaID int64) ([]*models.BoxWithBalance, error) {
	return s.boxRepo.ListWithBalance(ctx, cotistaID)
}

// Deposit adds funds to a box and returns the new balance
func (s *savingsService) Deposit(ctx context.Context, cotistaID, boxID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.move(ctx, cotistaID, boxID, amount, models.MovementTypeContribution)
}

// Withdraw removes funds from a box and returns the new balance. Fails
// with ErrInsufficientBalance when the box does not cover the amount.
func (s *savingsService) Withdraw(ctx context.Context, cotistaID, boxID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.move(ctx, cotistaID, boxID, amount, models.MovementTypeWithdrawal)
}

// move records a contribution or withdrawal and rewrites the day's
// snapshot in one transaction.
func (s *savingsService) move(ctx context.Context, cotistaID, boxID int64, amount decimal.Decimal, movementType models.MovementType) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	amount = amount.Round(2)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	box, err := uow.Boxes().GetOwnedActive(ctx, boxID, cotistaID)
	if err != nil {
		return decimal.Zero, err
	}
	if box == nil {
		return decimal.Zero, ErrNotFound
	}

	latest, err := uow.BoxSnapshots().GetLatest(ctx, boxID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	if latest != nil {
		balance = latest.Balance
	}

	var newBalance, recorded decimal.Decimal
	switch movementType {
	case models.MovementTypeWithdrawal:
		if balance.LessThan(amount) {
			return decimal.Zero, ErrInsufficientBalance
		}
		newBalance = balance.Sub(amount)
		recorded = amount.Neg()
	default:
		newBalance = balance.Add(amount)
		recorded = amount
	}

	movement := &models.BoxMovement{
		BoxID:  boxID,
		Amount: recorded,
		Type:   movementType,
	}
	if err := uow.BoxMovements().Record(ctx, movement); err != nil {
		return decimal.Zero, err
	}

	// Same-day movements collapse into one snapshot row per day
	snapshot := &models.BoxSnapshot{
		BoxID:         boxID,
		Balance:       newBalance,
		ReferenceDate: today(),
	}
	if err := uow.BoxSnapshots().Upsert(ctx, snapshot); err != nil {
		return decimal.Zero, err
	}

	uow.EventBus().Publish(events.BoxBalanceChangeEvent{
		BoxID:         boxID,
		CotistaID:     cotistaID,
		MovementType:  movementType,
		ChangeAmount:  recorded,
		BalanceBefore: balance,
		BalanceAfter:  newBalance,
	})

	if err := uow.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// DeactivateBox soft-disables a box owned by the cotista
func (s *savingsService) DeactivateBox(ctx context.Context, cotistaID, boxID int64) error {
	box, err := s.boxRepo.GetOwnedActive(ctx, boxID, cotistaID)
	if err != nil {
		return err
	}
	if box == nil {
		return ErrNotFound
	}
	return s.boxRepo.Deactivate(ctx, boxID, cotistaID)
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
