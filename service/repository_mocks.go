package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fundo/events"
	"fundo/models"
)

// Mock implementations of the repository interfaces for unit testing

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByCPF(ctx context.Context, cpf string) (*models.User, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) GetAll(ctx context.Context) ([]*models.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

type MockCotistaRepository struct {
	mock.Mock
}

func (m *MockCotistaRepository) GetByID(ctx context.Context, id int64) (*models.Cotista, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cotista), args.Error(1)
}

func (m *MockCotistaRepository) GetByUserID(ctx context.Context, userID int64) (*models.Cotista, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cotista), args.Error(1)
}

func (m *MockCotistaRepository) GetAll(ctx context.Context) ([]*models.Cotista, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Cotista), args.Error(1)
}

func (m *MockCotistaRepository) Create(ctx context.Context, cotista *models.Cotista) error {
	args := m.Called(ctx, cotista)
	return args.Error(0)
}

func (m *MockCotistaRepository) NextAccountNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Record(ctx context.Context, movement *models.CotistaMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) GetByCotista(ctx context.Context, cotistaID int64, from, to *time.Time) ([]*models.CotistaMovement, error) {
	args := m.Called(ctx, cotistaID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CotistaMovement), args.Error(1)
}

func (m *MockMovementRepository) Totals(ctx context.Context, cotistaID int64) (models.MovementTotals, error) {
	args := m.Called(ctx, cotistaID)
	return args.Get(0).(models.MovementTotals), args.Error(1)
}

type MockPixDepositRepository struct {
	mock.Mock
}

func (m *MockPixDepositRepository) Create(ctx context.Context, deposit *models.PixDeposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockPixDepositRepository) GetByCotista(ctx context.Context, cotistaID int64) ([]*models.PixDeposit, error) {
	args := m.Called(ctx, cotistaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PixDeposit), args.Error(1)
}

func (m *MockPixDepositRepository) GetByID(ctx context.Context, id int64) (*models.PixDeposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PixDeposit), args.Error(1)
}

func (m *MockPixDepositRepository) SetStatus(ctx context.Context, id int64, from, to models.DepositStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

type MockSavingsBoxRepository struct {
	mock.Mock
}

func (m *MockSavingsBoxRepository) Create(ctx context.Context, box *models.SavingsBox) error {
	args := m.Called(ctx, box)
	return args.Error(0)
}

func (m *MockSavingsBoxRepository) GetOwnedActive(ctx context.Context, boxID, cotistaID int64) (*models.SavingsBox, error) {
	args := m.Called(ctx, boxID, cotistaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavingsBox), args.Error(1)
}

func (m *MockSavingsBoxRepository) ListWithBalance(ctx context.Context, cotistaID int64) ([]*models.BoxWithBalance, error) {
	args := m.Called(ctx, cotistaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BoxWithBalance), args.Error(1)
}

func (m *MockSavingsBoxRepository) ListActiveWithLatestSnapshot(ctx context.Context) ([]*models.BoxWithBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BoxWithBalance), args.Error(1)
}

func (m *MockSavingsBoxRepository) Deactivate(ctx context.Context, boxID, cotistaID int64) error {
	args := m.Called(ctx, boxID, cotistaID)
	return args.Error(0)
}

type MockBoxSnapshotRepository struct {
	mock.Mock
}

func (m *MockBoxSnapshotRepository) Create(ctx context.Context, snapshot *models.BoxSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockBoxSnapshotRepository) Upsert(ctx context.Context, snapshot *models.BoxSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockBoxSnapshotRepository) GetLatest(ctx context.Context, boxID int64) (*models.BoxSnapshot, error) {
	args := m.Called(ctx, boxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BoxSnapshot), args.Error(1)
}

func (m *MockBoxSnapshotRepository) ExistsForDate(ctx context.Context, boxID int64, date time.Time) (bool, error) {
	args := m.Called(ctx, boxID, date)
	return args.Bool(0), args.Error(1)
}

type MockBoxMovementRepository struct {
	mock.Mock
}

func (m *MockBoxMovementRepository) Record(ctx context.Context, movement *models.BoxMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockBoxMovementRepository) GetByBox(ctx context.Context, boxID int64, limit int) ([]*models.BoxMovement, error) {
	args := m.Called(ctx, boxID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BoxMovement), args.Error(1)
}

func (m *MockBoxMovementRepository) ExistsEarningsSince(ctx context.Context, boxID int64, since time.Time) (bool, error) {
	args := m.Called(ctx, boxID, since)
	return args.Bool(0), args.Error(1)
}

type MockJobRunRepository struct {
	mock.Mock
}

func (m *MockJobRunRepository) Create(ctx context.Context, run *models.JobRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockJobRunRepository) GetLatest(ctx context.Context, jobName string) (*models.JobRun, error) {
	args := m.Called(ctx, jobName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobRun), args.Error(1)
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Events = append(m.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback are recorded through testify; the repository getters return the
// mocks wired in with SetRepositories.
type MockUnitOfWork struct {
	mock.Mock
	users        UserRepository
	roles        RoleRepository
	cotistas     CotistaRepository
	movements    MovementRepository
	pixDeposits  PixDepositRepository
	boxes        SavingsBoxRepository
	boxSnapshots BoxSnapshotRepository
	boxMovements BoxMovementRepository
	jobRuns      JobRunRepository
	eventBus     EventPublisher
}

// SetRepositories wires the mock repositories the getters hand out
func (m *MockUnitOfWork) SetRepositories(
	users UserRepository,
	roles RoleRepository,
	cotistas CotistaRepository,
	movements MovementRepository,
	pixDeposits PixDepositRepository,
	boxes SavingsBoxRepository,
	boxSnapshots BoxSnapshotRepository,
	boxMovements BoxMovementRepository,
	jobRuns JobRunRepository,
	eventBus EventPublisher,
) {
	m.users = users
	m.roles = roles
	m.cotistas = cotistas
	m.movements = movements
	m.pixDeposits = pixDeposits
	m.boxes = boxes
	m.boxSnapshots = boxSnapshots
	m.boxMovements = boxMovements
	m.jobRuns = jobRuns
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Users() UserRepository               { return m.users }
func (m *MockUnitOfWork) Roles() RoleRepository               { return m.roles }
func (m *MockUnitOfWork) Cotistas() CotistaRepository         { return m.cotistas }
func (m *MockUnitOfWork) Movements() MovementRepository       { return m.movements }
func (m *MockUnitOfWork) PixDeposits() PixDepositRepository   { return m.pixDeposits }
func (m *MockUnitOfWork) Boxes() SavingsBoxRepository         { return m.boxes }
func (m *MockUnitOfWork) BoxSnapshots() BoxSnapshotRepository { return m.boxSnapshots }
func (m *MockUnitOfWork) BoxMovements() BoxMovementRepository { return m.boxMovements }
func (m *MockUnitOfWork) JobRuns() JobRunRepository           { return m.jobRuns }
func (m *MockUnitOfWork) EventBus() EventPublisher            { return m.eventBus }

// MockUnitOfWorkFactory hands out the unit of work instances given to it,
// one per Create call, repeating the last one when exhausted.
type MockUnitOfWorkFactory struct {
	uows []*MockUnitOfWork
	next int
}

func NewMockUnitOfWorkFactory(uows ...*MockUnitOfWork) *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{uows: uows}
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	if len(f.uows) == 0 {
		panic("no mock unit of work configured")
	}
	uow := f.uows[f.next]
	if f.next < len(f.uows)-1 {
		f.next++
	}
	return uow
}
