package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"fundo/auth"
	"fundo/models"
)

type userService struct {
	uowFactory UnitOfWorkFactory
	userRepo   UserRepository
	roleRepo   RoleRepository
	bcryptCost int
}

// NewUserService creates the administrative user management service
func NewUserService(uowFactory UnitOfWorkFactory, userRepo UserRepository, roleRepo RoleRepository, bcryptCost int) UserService {
	return &userService{
		uowFactory: uowFactory,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		bcryptCost: bcryptCost,
	}
}

// ListUsers returns all users
func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// ListRoles returns all assignable roles
func (s *userService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.roleRepo.GetAll(ctx)
}

// canAssign enforces the role hierarchy: a creator may only hand out roles
// of a level strictly below their own. Owners may assign anything,
// including other owners.
func canAssign(creator auth.Principal, roleLevel int) bool {
	if creator.RoleLevel >= models.LevelOwner {
		return true
	}
	return roleLevel < creator.RoleLevel
}

// CreateUser creates a user. Users assigned a cotista-level role get an
// investor account with a fresh account number in the same transaction.
func (s *userService) CreateUser(ctx context.Context, creator auth.Principal, input CreateUserInput) (*models.User, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	role, err := uow.Roles().GetByID(ctx, input.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: role %d", ErrNotFound, input.RoleID)
	}
	if !canAssign(creator, role.Level) {
		return nil, ErrPermissionDenied
	}

	user := &models.User{
		CPF:          strings.TrimSpace(input.CPF),
		Name:         strings.TrimSpace(input.Name),
		Surname:      strings.TrimSpace(input.Surname),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		RoleID:       role.ID,
		Active:       true,
	}
	if err := uow.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	if role.Level == models.LevelCotista {
		accountNumber, err := uow.Cotistas().NextAccountNumber(ctx)
		if err != nil {
			return nil, err
		}
		cotista := &models.Cotista{
			UserID:        user.ID,
			AccountNumber: accountNumber,
		}
		if err := uow.Cotistas().Create(ctx, cotista); err != nil {
			return nil, err
		}
		user.CotistaID = &cotista.ID
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.RoleName = role.Name
	user.RoleLevel = role.Level

	log.WithFields(log.Fields{
		"userId":    user.ID,
		"roleLevel": role.Level,
		"createdBy": creator.UserID,
	}).Info("User created")

	return user, nil
}

// UpdateUser updates profile fields and role of an existing user. The
// editor must outrank both the user's current role and the new one.
func (s *userService) UpdateUser(ctx context.Context, editor auth.Principal, userID int64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	role, err := s.roleRepo.GetByID(ctx, input.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: role %d", ErrNotFound, input.RoleID)
	}
	if !canAssign(editor, user.RoleLevel) || !canAssign(editor, role.Level) {
		return nil, ErrPermissionDenied
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Surname = strings.TrimSpace(input.Surname)
	user.Email = strings.TrimSpace(input.Email)
	user.Phone = strings.TrimSpace(input.Phone)
	user.RoleID = role.ID

	if user.Name == "" || user.Surname == "" || user.Email == "" {
		return nil, fmt.Errorf("%w: name, surname and email are required", ErrInvalidInput)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// SetUserStatus activates or deactivates a user
func (s *userService) SetUserStatus(ctx context.Context, userID int64, active bool) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	return s.userRepo.SetActive(ctx, userID, active)
}

func validateCreateInput(input CreateUserInput) error {
	switch {
	case strings.TrimSpace(input.CPF) == "":
		return fmt.Errorf("%w: cpf is required", ErrInvalidInput)
	case strings.TrimSpace(input.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case strings.TrimSpace(input.Surname) == "":
		return fmt.Errorf("%w: surname is required", ErrInvalidInput)
	case strings.TrimSpace(input.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	case len(input.Password) < 8:
		return fmt.Errorf("%w: password must have at least 8 characters", ErrInvalidInput)
	}
	return nil
}
