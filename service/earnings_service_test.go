package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundo/events"
	"fundo/models"
)

func activeBox(id int64, balance string) *models.BoxWithBalance {
	return &models.BoxWithBalance{
		Box:            models.SavingsBox{ID: id, CotistaID: 1, Name: "Reserva", Active: true},
		CurrentBalance: decimal.RequireFromString(balance),
		HasSnapshot:    true,
	}
}

type earningsFixture struct {
	service   EarningsService
	boxes     *MockSavingsBoxRepository
	snapshots *MockBoxSnapshotRepository
	movements *MockBoxMovementRepository
	jobRuns   *MockJobRunRepository
	uow       *MockUnitOfWork
	publisher *MockEventPublisher
}

func newEarningsFixture() *earningsFixture {
	f := &earningsFixture{
		boxes:     new(MockSavingsBoxRepository),
		snapshots: new(MockBoxSnapshotRepository),
		movements: new(MockBoxMovementRepository),
		jobRuns:   new(MockJobRunRepository),
		uow:       new(MockUnitOfWork),
		publisher: new(MockEventPublisher),
	}
	f.uow.SetRepositories(nil, nil, nil, nil, nil, f.boxes, f.snapshots, f.movements, f.jobRuns, f.publisher)
	f.service = NewEarningsService(NewMockUnitOfWorkFactory(f.uow), f.boxes, f.jobRuns, events.NewBus())
	return f
}

var earningsNow = time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
var earningsRunDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestProcessEarnings_PostsMovementAndSnapshot(t *testing.T) {
	f := newEarningsFixture()
	ctx := context.Background()

	f.boxes.On("ListActiveWithLatestSnapshot", ctx).
		Return([]*models.BoxWithBalance{activeBox(1, "1000.00")}, nil)

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.snapshots.On("ExistsForDate", ctx, int64(1), earningsRunDate).Return(false, nil)
	f.movements.On("ExistsEarningsSince", ctx, int64(1), earningsRunDate).Return(false, nil)

	expectedAmount := EarningsAmount(decimal.RequireFromString("1000.00"), MonthlyEarningRate())

	f.movements.On("Record", ctx, mock.MatchedBy(func(m *models.BoxMovement) bool {
		return m.BoxID == 1 &&
			m.Type == models.MovementTypeEarnings &&
			m.Amount.Equal(expectedAmount)
	})).Return(nil)

	f.snapshots.On("Create", ctx, mock.MatchedBy(func(s *models.BoxSnapshot) bool {
		return s.BoxID == 1 &&
			s.ReferenceDate.Equal(earningsRunDate) &&
			s.Balance.Equal(decimal.RequireFromString("1000.00").Add(expectedAmount))
	})).Return(nil)

	f.jobRuns.On("Create", ctx, mock.Anything).Return(nil)

	result, err := f.service.ProcessEarnings(ctx, earningsNow)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Count)
	assert.InEpsilon(t, MonthlyEarningRate(), result.RateApplied, 1e-12)
	f.movements.AssertExpectations(t)
	f.snapshots.AssertExpectations(t)

	// The in-transaction event carries the balance transition
	require.Len(t, f.publisher.Events, 1)
	change := f.publisher.Events[0].(events.BoxBalanceChangeEvent)
	assert.True(t, change.BalanceAfter.Equal(decimal.RequireFromString("1000.00").Add(expectedAmount)))
}

func TestProcessEarnings_SecondRunSameDayIsNoOp(t *testing.T) {
	f := newEarningsFixture()
	ctx := context.Background()

	f.boxes.On("ListActiveWithLatestSnapshot", ctx).
		Return([]*models.BoxWithBalance{activeBox(1, "1000.00")}, nil)

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.snapshots.On("ExistsForDate", ctx, int64(1), earningsRunDate).Return(true, nil)
	f.jobRuns.On("Create", ctx, mock.Anything).Return(nil)

	result, err := f.service.ProcessEarnings(ctx, earningsNow)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Count)
	f.movements.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	f.snapshots.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestProcessEarnings_SkipsZeroBalanceAndMissingSnapshot(t *testing.T) {
	f := newEarningsFixture()
	ctx := context.Background()

	noSnapshot := &models.BoxWithBalance{
		Box:         models.SavingsBox{ID: 2, CotistaID: 1, Active: true},
		HasSnapshot: false,
	}

	f.boxes.On("ListActiveWithLatestSnapshot", ctx).
		Return([]*models.BoxWithBalance{activeBox(1, "0.00"), noSnapshot}, nil)
	f.jobRuns.On("Create", ctx, mock.Anything).Return(nil)

	result, err := f.service.ProcessEarnings(ctx, earningsNow)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Count)

	// Neither box ever reaches the transaction
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestProcessEarnings_DuplicateSnapshotCountsAsAlreadyPosted(t *testing.T) {
	f := newEarningsFixture()
	ctx := context.Background()

	f.boxes.On("ListActiveWithLatestSnapshot", ctx).
		Return([]*models.BoxWithBalance{activeBox(1, "500.00")}, nil)

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.snapshots.On("ExistsForDate", ctx, int64(1), earningsRunDate).Return(false, nil)
	f.movements.On("ExistsEarningsSince", ctx, int64(1), earningsRunDate).Return(false, nil)
	f.movements.On("Record", ctx, mock.Anything).Return(nil)

	// A concurrent run inserted the snapshot between the check and our write
	f.snapshots.On("Create", ctx, mock.Anything).Return(ErrDuplicateSnapshot)
	f.jobRuns.On("Create", ctx, mock.Anything).Return(nil)

	result, err := f.service.ProcessEarnings(ctx, earningsNow)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Count)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestProcessEarnings_FailedBoxDoesNotStopTheBatch(t *testing.T) {
	f := newEarningsFixture()
	ctx := context.Background()

	f.boxes.On("ListActiveWithLatestSnapshot", ctx).Return([]*models.BoxWithBalance{
		activeBox(1, "100.00"),
		activeBox(2, "200.00"),
		activeBox(3, "300.00"),
	}, nil)

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.snapshots.On("ExistsForDate", ctx, mock.Anything, earningsRunDate).Return(false, nil)
	f.movements.On("ExistsEarningsSince", ctx, mock.Anything, earningsRunDate).Return(false, nil)

	f.movements.On("Record", ctx, mock.MatchedBy(func(m *models.BoxMovement) bool {
		return m.BoxID == 2
	})).Return(errors.New("insert failed"))
	f.movements.On("Record", ctx, mock.MatchedBy(func(m *models.BoxMovement) bool {
		return m.BoxID != 2
	})).Return(nil)
	f.snapshots.On("Create", ctx, mock.Anything).Return(nil)

	var run *models.JobRun
	f.jobRuns.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		run = args.Get(1).(*models.JobRun)
	}).Return(nil)

	result, err := f.service.ProcessEarnings(ctx, earningsNow)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Count)

	require.NotNil(t, run)
	assert.Equal(t, EarningsJobName, run.JobName)
	assert.Equal(t, models.JobStatusFailure, run.Status)
	assert.Equal(t, 2, run.Processed)
}

func TestProcessEarnings_ScanFailureStillWritesAuditRecord(t *testing.T) {
	f := newEarningsFixture()
	ctx := context.Background()

	f.boxes.On("ListActiveWithLatestSnapshot", ctx).Return(nil, errors.New("connection lost"))

	var run *models.JobRun
	f.jobRuns.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		run = args.Get(1).(*models.JobRun)
	}).Return(nil)

	_, err := f.service.ProcessEarnings(ctx, earningsNow)

	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, models.JobStatusFailure, run.Status)
	assert.Equal(t, 0, run.Processed)
}
