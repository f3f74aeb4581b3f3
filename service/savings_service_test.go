package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundo/events"
	"fundo/models"
)

type savingsFixture struct {
	service   SavingsService
	boxes     *MockSavingsBoxRepository
	snapshots *MockBoxSnapshotRepository
	movements *MockBoxMovementRepository
	uow       *MockUnitOfWork
	publisher *MockEventPublisher
}

func newSavingsFixture() *savingsFixture {
	f := &savingsFixture{
		boxes:     new(MockSavingsBoxRepository),
		snapshots: new(MockBoxSnapshotRepository),
		movements: new(MockBoxMovementRepository),
		uow:       new(MockUnitOfWork),
		publisher: new(MockEventPublisher),
	}
	f.uow.SetRepositories(nil, nil, nil, nil, nil, f.boxes, f.snapshots, f.movements, nil, f.publisher)
	f.service = NewSavingsService(NewMockUnitOfWorkFactory(f.uow), f.boxes)
	return f
}

func TestCreateBox_WritesZeroSnapshot(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.boxes.On("Create", ctx, mock.MatchedBy(func(b *models.SavingsBox) bool {
		return b.CotistaID == 7 && b.Name == "Viagem" && b.Active
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.SavingsBox).ID = 42
	}).Return(nil)

	f.snapshots.On("Create", ctx, mock.MatchedBy(func(s *models.BoxSnapshot) bool {
		return s.BoxID == 42 && s.Balance.IsZero()
	})).Return(nil)

	box, err := f.service.CreateBox(ctx, 7, "  Viagem  ", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(42), box.ID)
	f.snapshots.AssertExpectations(t)
}

func TestCreateBox_RejectsEmptyName(t *testing.T) {
	f := newSavingsFixture()

	_, err := f.service.CreateBox(context.Background(), 7, "   ", nil)

	assert.ErrorIs(t, err, ErrInvalidInput)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestDeposit_AddsToLatestBalance(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.boxes.On("GetOwnedActive", ctx, int64(42), int64(7)).
		Return(&models.SavingsBox{ID: 42, CotistaID: 7, Active: true}, nil)
	f.snapshots.On("GetLatest", ctx, int64(42)).
		Return(&models.BoxSnapshot{BoxID: 42, Balance: decimal.RequireFromString("100.00")}, nil)

	f.movements.On("Record", ctx, mock.MatchedBy(func(m *models.BoxMovement) bool {
		return m.Type == models.MovementTypeContribution &&
			m.Amount.Equal(decimal.RequireFromString("40.50"))
	})).Return(nil)

	f.snapshots.On("Upsert", ctx, mock.MatchedBy(func(s *models.BoxSnapshot) bool {
		return s.Balance.Equal(decimal.RequireFromString("140.50"))
	})).Return(nil)

	balance, err := f.service.Deposit(ctx, 7, 42, decimal.RequireFromString("40.50"))

	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("140.50")), "got %s", balance)

	require.Len(t, f.publisher.Events, 1)
	change := f.publisher.Events[0].(events.BoxBalanceChangeEvent)
	assert.Equal(t, models.MovementTypeContribution, change.MovementType)
	assert.True(t, change.BalanceBefore.Equal(decimal.RequireFromString("100.00")))
}

func TestDeposit_FirstMovementStartsFromZero(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.boxes.On("GetOwnedActive", ctx, int64(42), int64(7)).
		Return(&models.SavingsBox{ID: 42, CotistaID: 7, Active: true}, nil)
	f.snapshots.On("GetLatest", ctx, int64(42)).Return(nil, nil)
	f.movements.On("Record", ctx, mock.Anything).Return(nil)
	f.snapshots.On("Upsert", ctx, mock.MatchedBy(func(s *models.BoxSnapshot) bool {
		return s.Balance.Equal(decimal.RequireFromString("25.00"))
	})).Return(nil)

	balance, err := f.service.Deposit(ctx, 7, 42, decimal.RequireFromString("25.00"))

	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("25.00")))
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.boxes.On("GetOwnedActive", ctx, int64(42), int64(7)).
		Return(&models.SavingsBox{ID: 42, CotistaID: 7, Active: true}, nil)
	f.snapshots.On("GetLatest", ctx, int64(42)).
		Return(&models.BoxSnapshot{BoxID: 42, Balance: decimal.RequireFromString("50.00")}, nil)

	_, err := f.service.Withdraw(ctx, 7, 42, decimal.RequireFromString("100.00"))

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	f.movements.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit")
	assert.Empty(t, f.publisher.Events)
}

func TestWithdraw_RecordsNegativeMovement(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.boxes.On("GetOwnedActive", ctx, int64(42), int64(7)).
		Return(&models.SavingsBox{ID: 42, CotistaID: 7, Active: true}, nil)
	f.snapshots.On("GetLatest", ctx, int64(42)).
		Return(&models.BoxSnapshot{BoxID: 42, Balance: decimal.RequireFromString("50.00")}, nil)

	f.movements.On("Record", ctx, mock.MatchedBy(func(m *models.BoxMovement) bool {
		return m.Type == models.MovementTypeWithdrawal &&
			m.Amount.Equal(decimal.RequireFromString("-20.00"))
	})).Return(nil)
	f.snapshots.On("Upsert", ctx, mock.MatchedBy(func(s *models.BoxSnapshot) bool {
		return s.Balance.Equal(decimal.RequireFromString("30.00"))
	})).Return(nil)

	balance, err := f.service.Withdraw(ctx, 7, 42, decimal.RequireFromString("20.00"))

	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("30.00")))
	f.movements.AssertExpectations(t)
}

func TestMove_RejectsNonPositiveAmount(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	_, err := f.service.Deposit(ctx, 7, 42, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.Withdraw(ctx, 7, 42, decimal.RequireFromString("-5"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeposit_UnknownBox(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.boxes.On("GetOwnedActive", ctx, int64(99), int64(7)).Return(nil, nil)

	_, err := f.service.Deposit(ctx, 7, 99, decimal.RequireFromString("10.00"))

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateBox_UnknownBox(t *testing.T) {
	f := newSavingsFixture()
	ctx := context.Background()

	f.boxes.On("GetOwnedActive", ctx, int64(99), int64(7)).Return(nil, nil)

	err := f.service.DeactivateBox(ctx, 7, 99)

	assert.ErrorIs(t, err, ErrNotFound)
	f.boxes.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything, mock.Anything)
}
