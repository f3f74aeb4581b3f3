package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"fundo/auth"
	"fundo/models"
)

type authService struct {
	userRepo    UserRepository
	cotistaRepo CotistaRepository
	issuer      *auth.TokenIssuer
}

// NewAuthService creates the login and session service
func NewAuthService(userRepo UserRepository, cotistaRepo CotistaRepository, issuer *auth.TokenIssuer) AuthService {
	return &authService{
		userRepo:    userRepo,
		cotistaRepo: cotistaRepo,
		issuer:      issuer,
	}
}

// Login verifies CPF and password and returns a signed session token with
// the user payload. Unknown CPFs, wrong passwords and deactivated users
// all fail the same way.
func (s *authService) Login(ctx context.Context, cpf, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Sign(auth.Principal{
		UserID:    user.ID,
		RoleLevel: user.RoleLevel,
		CotistaID: user.CotistaID,
	})
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		Token:       token,
		UserID:      user.ID,
		CPF:         user.CPF,
		Name:        user.Name,
		Surname:     user.Surname,
		Email:       user.Email,
		Phone:       user.Phone,
		RoleName:    user.RoleName,
		RoleLevel:   user.RoleLevel,
		CotistaID:   user.CotistaID,
		MemberSince: user.CreatedAt,
	}

	if user.CotistaID != nil {
		cotista, err := s.cotistaRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if cotista != nil {
			result.AccountNumber = &cotista.AccountNumber
			result.MemberSince = cotista.CreatedAt
		}
	}

	log.WithFields(log.Fields{"userId": user.ID, "roleLevel": user.RoleLevel}).Info("User logged in")

	return result, nil
}

// Profile returns the user behind an authenticated principal
func (s *authService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
