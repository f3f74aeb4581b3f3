package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fundo/auth"
	"fundo/events"
	"fundo/models"
)

// ErrDuplicateSnapshot is returned by BoxSnapshotRepository.Create when a
// snapshot already exists for the (box, date) pair. The earnings engine
// treats it as "already posted" rather than a failure.
var ErrDuplicateSnapshot = errors.New("snapshot already exists for this box and date")

// ErrInvalidCredentials is returned by Login for unknown CPFs, wrong
// passwords and deactivated users alike, so callers cannot probe accounts.
var ErrInvalidCredentials = errors.New("invalid CPF or password")

// ErrPermissionDenied is returned when a principal's level does not allow
// the requested operation.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when a CPF or email is already registered.
var ErrDuplicateUser = errors.New("cpf or email already registered")

// ErrInsufficientBalance is returned by Withdraw when the box balance does
// not cover the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrInvalidInput is wrapped by services rejecting malformed payloads.
var ErrInvalidInput = errors.New("invalid input")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, with role and cotista info joined
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByCPF retrieves a user by CPF, with role and cotista info joined
	GetByCPF(ctx context.Context, cpf string) (*models.User, error)

	// GetAll returns all users ordered by creation date
	GetAll(ctx context.Context) ([]*models.User, error)

	// Create inserts a new user and fills in generated fields
	Create(ctx context.Context, user *models.User) error

	// Update updates a user's profile fields and role
	Update(ctx context.Context, user *models.User) error

	// SetActive activates or deactivates a user
	SetActive(ctx context.Context, id int64, active bool) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	// GetAll returns all roles ordered by level
	GetAll(ctx context.Context) ([]*models.Role, error)

	// GetByID retrieves a role by id
	GetByID(ctx context.Context, id int64) (*models.Role, error)
}

// CotistaRepository defines the interface for cotista account data access
type CotistaRepository interface {
	// GetByID retrieves a cotista by id
	GetByID(ctx context.Context, id int64) (*models.Cotista, error)

	// GetByUserID retrieves the cotista owned by a user
	GetByUserID(ctx context.Context, userID int64) (*models.Cotista, error)

	// GetAll returns all cotistas with their owner's name
	GetAll(ctx context.Context) ([]*models.Cotista, error)

	// Create inserts a new cotista account
	Create(ctx context.Context, cotista *models.Cotista) error

	// NextAccountNumber allocates the next sequential account number
	NextAccountNumber(ctx context.Context) (int64, error)
}

// MovementRepository defines the interface for fund-level ledger movements
type MovementRepository interface {
	// Record appends a movement
	Record(ctx context.Context, movement *models.CotistaMovement) error

	// GetByCotista returns movements for a cotista, newest first,
	// optionally bounded by [from, to)
	GetByCotista(ctx context.Context, cotistaID int64, from, to *time.Time) ([]*models.CotistaMovement, error)

	// Totals aggregates a cotista's movements for the summary card
	Totals(ctx context.Context, cotistaID int64) (models.MovementTotals, error)
}

// PixDepositRepository defines the interface for pending PIX deposit requests
type PixDepositRepository interface {
	// Create inserts a new pending deposit request
	Create(ctx context.Context, deposit *models.PixDeposit) error

	// GetByCotista returns deposit requests for a cotista, newest first
	GetByCotista(ctx context.Context, cotistaID int64) ([]*models.PixDeposit, error)

	// GetByID retrieves a deposit request by id
	GetByID(ctx context.Context, id int64) (*models.PixDeposit, error)

	// SetStatus transitions a deposit from one status to another, failing
	// when the current status does not match
	SetStatus(ctx context.Context, id int64, from, to models.DepositStatus) error
}

// SavingsBoxRepository defines the interface for savings box data access
type SavingsBoxRepository interface {
	// Create inserts a new box
	Create(ctx context.Context, box *models.SavingsBox) error

	// GetOwnedActive retrieves an active box only if it belongs to the cotista
	GetOwnedActive(ctx context.Context, boxID, cotistaID int64) (*models.SavingsBox, error)

	// ListWithBalance returns a cotista's active boxes with current balances
	ListWithBalance(ctx context.Context, cotistaID int64) ([]*models.BoxWithBalance, error)

	// ListActiveWithLatestSnapshot returns every active box paired with its
	// most recent snapshot balance. Boxes without a snapshot are flagged.
	ListActiveWithLatestSnapshot(ctx context.Context) ([]*models.BoxWithBalance, error)

	// Deactivate soft-disables a box owned by the cotista
	Deactivate(ctx context.Context, boxID, cotistaID int64) error
}

// BoxSnapshotRepository defines the interface for box balance snapshots
type BoxSnapshotRepository interface {
	// Create appends a snapshot. Returns ErrDuplicateSnapshot when one
	// already exists for the (box, reference date) pair.
	Create(ctx context.Context, snapshot *models.BoxSnapshot) error

	// Upsert writes the snapshot for the (box, reference date) pair,
	// replacing the balance when the row already exists. Used by deposits
	// and withdrawals, which may update the same day's balance repeatedly.
	Upsert(ctx context.Context, snapshot *models.BoxSnapshot) error

	// GetLatest returns the most recent snapshot for a box, or nil
	GetLatest(ctx context.Context, boxID int64) (*models.BoxSnapshot, error)

	// ExistsForDate reports whether a snapshot exists for the box on a date
	ExistsForDate(ctx context.Context, boxID int64, date time.Time) (bool, error)
}

// BoxMovementRepository defines the interface for box ledger movements
type BoxMovementRepository interface {
	// Record appends a movement
	Record(ctx context.Context, movement *models.BoxMovement) error

	// GetByBox returns movements for a box, newest first
	GetByBox(ctx context.Context, boxID int64, limit int) ([]*models.BoxMovement, error)

	// ExistsEarningsSince reports whether an earnings movement was created
	// for the box on or after the given instant
	ExistsEarningsSince(ctx context.Context, boxID int64, since time.Time) (bool, error)
}

// JobRunRepository defines the interface for batch run audit records
type JobRunRepository interface {
	// Create inserts a run record
	Create(ctx context.Context, run *models.JobRun) error

	// GetLatest returns the most recent run of a job, or nil
	GetLatest(ctx context.Context, jobName string) (*models.JobRun, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	Users() UserRepository
	Roles() RoleRepository
	Cotistas() CotistaRepository
	Movements() MovementRepository
	PixDeposits() PixDepositRepository
	Boxes() SavingsBoxRepository
	BoxSnapshots() BoxSnapshotRepository
	BoxMovements() BoxMovementRepository
	JobRuns() JobRunRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AuthService defines the interface for login and session operations
type AuthService interface {
	// Login verifies CPF and password and returns a signed session
	Login(ctx context.Context, cpf, password string) (*LoginResult, error)

	// Profile returns the user behind an authenticated principal
	Profile(ctx context.Context, userID int64) (*models.User, error)
}

// LoginResult carries the signed token and the flat user payload the
// frontend consumes after login.
type LoginResult struct {
	Token         string    `json:"token"`
	UserID        int64     `json:"userId"`
	CPF           string    `json:"cpf"`
	Name          string    `json:"name"`
	Surname       string    `json:"surname"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	RoleName      string    `json:"roleName"`
	RoleLevel     int       `json:"roleLevel"`
	CotistaID     *int64    `json:"cotistaId"`
	AccountNumber *int64    `json:"accountNumber"`
	MemberSince   time.Time `json:"memberSince"`
}

// CreateUserInput is the payload for admin user creation
type CreateUserInput struct {
	CPF      string `json:"cpf"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	RoleID   int64  `json:"roleId"`
}

// UpdateUserInput is the payload for admin user updates
type UpdateUserInput struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	RoleID  int64  `json:"roleId"`
}

// UserService defines the interface for administrative user management
type UserService interface {
	// ListUsers returns all users
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateUser creates a user. The creator may only assign roles of a
	// level strictly below their own, owners excepted.
	CreateUser(ctx context.Context, creator auth.Principal, input CreateUserInput) (*models.User, error)

	// UpdateUser updates profile fields and role of an existing user
	UpdateUser(ctx context.Context, creator auth.Principal, userID int64, input UpdateUserInput) (*models.User, error)

	// SetUserStatus activates or deactivates a user
	SetUserStatus(ctx context.Context, userID int64, active bool) error

	// ListRoles returns all assignable roles
	ListRoles(ctx context.Context) ([]*models.Role, error)
}

// CotistaService defines the interface for investor account operations
type CotistaService interface {
	// ListCotistas returns all investor accounts
	ListCotistas(ctx context.Context) ([]*models.Cotista, error)

	// GetCotista returns one investor account
	GetCotista(ctx context.Context, cotistaID int64) (*models.Cotista, error)

	// Summary returns the aggregated account figures
	Summary(ctx context.Context, cotistaID int64) (*models.CotistaSummary, error)

	// Statement returns the movement listing for the cotista owned by a user
	Statement(ctx context.Context, userID int64, from, to *time.Time) (*models.Statement, error)
}

// DepositService defines the interface for PIX deposit requests
type DepositService interface {
	// RequestDeposit registers a pending deposit and generates its PIX payload
	RequestDeposit(ctx context.Context, cotistaID int64, amount decimal.Decimal) (*models.PixDeposit, error)

	// ListDeposits returns a cotista's deposit requests, newest first
	ListDeposits(ctx context.Context, cotistaID int64) ([]*models.PixDeposit, error)

	// ConfirmDeposit settles a pending deposit: marks it confirmed and
	// posts the matching contribution to the cotista's ledger
	ConfirmDeposit(ctx context.Context, depositID int64) error

	// CancelDeposit voids a pending deposit without any ledger effect
	CancelDeposit(ctx context.Context, depositID int64) error
}

// SavingsService defines the interface for savings box operations
type SavingsService interface {
	// CreateBox creates a box and its initial zero balance snapshot
	CreateBox(ctx context.Context, cotistaID int64, name string, goal *decimal.Decimal) (*models.SavingsBox, error)

	// ListBoxes returns the cotista's active boxes with current balances
	ListBoxes(ctx context.Context, cotistaID int64) ([]*models.BoxWithBalance, error)

	// Deposit adds funds to a box
	Deposit(ctx context.Context, cotistaID, boxID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// Withdraw removes funds from a box, failing on insufficient balance
	Withdraw(ctx context.Context, cotistaID, boxID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// DeactivateBox soft-disables a box
	DeactivateBox(ctx context.Context, cotistaID, boxID int64) error
}

// EarningsService defines the interface for the monthly earnings batch
type EarningsService interface {
	// ProcessEarnings posts the monthly accrual to every eligible box and
	// always writes one job run audit record
	ProcessEarnings(ctx context.Context, now time.Time) (*models.EarningsResult, error)
}
