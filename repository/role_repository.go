package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundo/database"
	"fundo/models"
)

// RoleRepository implements the service.RoleRepository interface
type RoleRepository struct {
	q queryable
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{q: db.Pool}
}

func newRoleRepositoryWithTx(tx queryable) *RoleRepository {
	return &RoleRepository{q: tx}
}

// GetAll returns all roles ordered by level
func (r *RoleRepository) GetAll(ctx context.Context) ([]*models.Role, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, level, created_at FROM roles ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Level, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, &role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}

	return roles, nil
}

// GetByID retrieves a role by id
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	err := r.q.QueryRow(ctx,
		`SELECT id, name, level, created_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Level, &role.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role %d: %w", id, err)
	}

	return &role, nil
}
