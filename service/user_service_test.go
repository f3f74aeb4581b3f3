package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundo/auth"
	"fundo/models"
)

type userFixture struct {
	service  UserService
	users    *MockUserRepository
	roles    *MockRoleRepository
	cotistas *MockCotistaRepository
	uow      *MockUnitOfWork
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    new(MockUserRepository),
		roles:    new(MockRoleRepository),
		cotistas: new(MockCotistaRepository),
		uow:      new(MockUnitOfWork),
	}
	f.uow.SetRepositories(f.users, f.roles, f.cotistas, nil, nil, nil, nil, nil, nil, new(MockEventPublisher))
	f.service = NewUserService(NewMockUnitOfWorkFactory(f.uow), f.users, f.roles, 4)
	return f
}

var (
	adminPrincipal = auth.Principal{UserID: 1, RoleLevel: models.LevelAdmin}
	ownerPrincipal = auth.Principal{UserID: 1, RoleLevel: models.LevelOwner}

	cotistaRole = &models.Role{ID: 2, Name: "cotista", Level: models.LevelCotista}
	adminRole   = &models.Role{ID: 4, Name: "admin", Level: models.LevelAdmin}
	ownerRole   = &models.Role{ID: 5, Name: "owner", Level: models.LevelOwner}
)

func validInput(roleID int64) CreateUserInput {
	return CreateUserInput{
		CPF:      "52998224725",
		Name:     "Maria",
		Surname:  "Silva",
		Email:    "maria@example.com",
		Password: "long-enough-password",
		RoleID:   roleID,
	}
}

func TestCreateUser_CotistaGetsAccount(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.roles.On("GetByID", ctx, int64(2)).Return(cotistaRole, nil)
	f.users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.CPF == "52998224725" && u.RoleID == 2 && u.Active && u.PasswordHash != ""
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 10
	}).Return(nil)

	f.cotistas.On("NextAccountNumber", ctx).Return(int64(10001), nil)
	f.cotistas.On("Create", ctx, mock.MatchedBy(func(c *models.Cotista) bool {
		return c.UserID == 10 && c.AccountNumber == 10001
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Cotista).ID = 7
	}).Return(nil)

	user, err := f.service.CreateUser(ctx, adminPrincipal, validInput(2))

	require.NoError(t, err)
	require.NotNil(t, user.CotistaID)
	assert.Equal(t, int64(7), *user.CotistaID)
	assert.Equal(t, models.LevelCotista, user.RoleLevel)

	// The plaintext never reaches the repository
	assert.NotContains(t, user.PasswordHash, "long-enough-password")
	f.cotistas.AssertExpectations(t)
}

func TestCreateUser_CannotAssignOwnOrHigherLevel(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.roles.On("GetByID", ctx, int64(4)).Return(adminRole, nil)

	_, err := f.service.CreateUser(ctx, adminPrincipal, validInput(4))

	assert.ErrorIs(t, err, ErrPermissionDenied)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_OwnerCanAssignOwner(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.roles.On("GetByID", ctx, int64(5)).Return(ownerRole, nil)
	f.users.On("Create", ctx, mock.Anything).Return(nil)

	_, err := f.service.CreateUser(ctx, ownerPrincipal, validInput(5))

	require.NoError(t, err)
	f.cotistas.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_ShortPassword(t *testing.T) {
	f := newUserFixture()

	input := validInput(2)
	input.Password = "short"

	_, err := f.service.CreateUser(context.Background(), adminPrincipal, input)

	assert.ErrorIs(t, err, ErrInvalidInput)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestUpdateUser_CannotTouchHigherLevelUser(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	target := &models.User{ID: 3, RoleLevel: models.LevelOwner, RoleID: 5}
	f.users.On("GetByID", ctx, int64(3)).Return(target, nil)
	f.roles.On("GetByID", ctx, int64(2)).Return(cotistaRole, nil)

	_, err := f.service.UpdateUser(ctx, adminPrincipal, 3, UpdateUserInput{
		Name: "Maria", Surname: "Silva", Email: "maria@example.com", RoleID: 2,
	})

	assert.ErrorIs(t, err, ErrPermissionDenied)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetUserStatus_UnknownUser(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.users.On("GetByID", ctx, int64(99)).Return(nil, nil)

	err := f.service.SetUserStatus(ctx, 99, false)

	assert.ErrorIs(t, err, ErrNotFound)
	f.users.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}
