package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fundo/database"
	"fundo/models"
	"fundo/service"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userSelect = `
	SELECT u.id, u.cpf, u.name, u.surname, u.email, COALESCE(u.phone, ''),
	       u.password_hash, u.role_id, u.active, u.created_at, u.updated_at,
	       r.name, r.level, c.id
	FROM users u
	JOIN roles r ON r.id = u.role_id
	LEFT JOIN cotistas c ON c.user_id = u.id
`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.CPF,
		&user.Name,
		&user.Surname,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.RoleID,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.RoleName,
		&user.RoleLevel,
		&user.CotistaID,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by id, with role and cotista info joined
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByCPF retrieves a user by CPF, with role and cotista info joined
func (r *UserRepository) GetByCPF(ctx context.Context, cpf string) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, userSelect+` WHERE u.cpf = $1`, cpf))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by cpf: %w", err)
	}
	return user, nil
}

// GetAll returns all users ordered by creation date
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, userSelect+` ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Create inserts a new user and fills in generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (cpf, name, surname, email, phone, password_hash, role_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.CPF,
		user.Name,
		user.Surname,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.RoleID,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return service.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Update updates a user's profile fields and role
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, surname = $2, email = $3, phone = $4, role_id = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.q.Exec(ctx, query,
		user.Name,
		user.Surname,
		user.Email,
		user.Phone,
		user.RoleID,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", user.ID)
	}

	return nil
}

// SetActive activates or deactivates a user
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.q.Exec(ctx,
		`UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set user %d status: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}
