package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundo/auth"
	"fundo/models"
)

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", time.Hour)
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4) // min cost keeps tests fast
	require.NoError(t, err)

	cotistaID := int64(7)
	return &models.User{
		ID:           1,
		CPF:          "52998224725",
		Name:         "Maria",
		Surname:      "Silva",
		Email:        "maria@example.com",
		PasswordHash: hash,
		Active:       true,
		RoleName:     "cotista",
		RoleLevel:    models.LevelCotista,
		CotistaID:    &cotistaID,
	}
}

func TestLogin_Success(t *testing.T) {
	users := new(MockUserRepository)
	cotistas := new(MockCotistaRepository)
	issuer := testIssuer()
	service := NewAuthService(users, cotistas, issuer)
	ctx := context.Background()

	user := activeUser(t, "s3cr3t-pass")
	users.On("GetByCPF", ctx, "52998224725").Return(user, nil)
	cotistas.On("GetByUserID", ctx, int64(1)).Return(&models.Cotista{
		ID:            7,
		UserID:        1,
		AccountNumber: 10001,
		CreatedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}, nil)

	result, err := service.Login(ctx, "52998224725", "s3cr3t-pass")

	require.NoError(t, err)
	assert.Equal(t, "Maria", result.Name)
	require.NotNil(t, result.AccountNumber)
	assert.Equal(t, int64(10001), *result.AccountNumber)

	// The returned token must verify and carry the principal
	principal, err := issuer.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), principal.UserID)
	assert.Equal(t, models.LevelCotista, principal.RoleLevel)
	require.NotNil(t, principal.CotistaID)
	assert.Equal(t, int64(7), *principal.CotistaID)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	service := NewAuthService(users, new(MockCotistaRepository), testIssuer())
	ctx := context.Background()

	users.On("GetByCPF", ctx, "52998224725").Return(activeUser(t, "s3cr3t-pass"), nil)

	_, err := service.Login(ctx, "52998224725", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownCPF(t *testing.T) {
	users := new(MockUserRepository)
	service := NewAuthService(users, new(MockCotistaRepository), testIssuer())
	ctx := context.Background()

	users.On("GetByCPF", ctx, "00000000000").Return(nil, nil)

	_, err := service.Login(ctx, "00000000000", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DeactivatedUser(t *testing.T) {
	users := new(MockUserRepository)
	service := NewAuthService(users, new(MockCotistaRepository), testIssuer())
	ctx := context.Background()

	user := activeUser(t, "s3cr3t-pass")
	user.Active = false
	users.On("GetByCPF", ctx, "52998224725").Return(user, nil)

	_, err := service.Login(ctx, "52998224725", "s3cr3t-pass")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_TamperedToken(t *testing.T) {
	issuer := testIssuer()
	token, err := issuer.Sign(auth.Principal{UserID: 1, RoleLevel: models.LevelAdmin})
	require.NoError(t, err)

	_, err = issuer.Verify(token + "x")
	assert.Error(t, err)

	other := auth.NewTokenIssuer("other-secret", time.Hour)
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestProfile_UnknownUser(t *testing.T) {
	users := new(MockUserRepository)
	service := NewAuthService(users, new(MockCotistaRepository), testIssuer())
	ctx := context.Background()

	users.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := service.Profile(ctx, 99)

	assert.ErrorIs(t, err, ErrNotFound)
}
