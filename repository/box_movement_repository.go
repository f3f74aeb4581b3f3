package repository

import (
	"context"
	"fmt"
	"time"

	"fundo/database"
	"fundo/models"
)

// BoxMovementRepository implements the service.BoxMovementRepository interface
type BoxMovementRepository struct {
	q queryable
}

// NewBoxMovementRepository creates a new box movement repository
func NewBoxMovementRepository(db *database.DB) *BoxMovementRepository {
	return &BoxMovementRepository{q: db.Pool}
}

func newBoxMovementRepositoryWithTx(tx queryable) *BoxMovementRepository {
	return &BoxMovementRepository{q: tx}
}

// Record appends a movement
func (r *BoxMovementRepository) Record(ctx context.Context, movement *models.BoxMovement) error {
	query := `
		INSERT INTO box_movements (box_id, amount, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		movement.BoxID,
		movement.Amount,
		movement.Type,
	).Scan(&movement.ID, &movement.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record movement for box %d: %w", movement.BoxID, err)
	}

	return nil
}

// GetByBox returns movements for a box, newest first
func (r *BoxMovementRepository) GetByBox(ctx context.Context, boxID int64, limit int) ([]*models.BoxMovement, error) {
	query := `
		SELECT id, box_id, amount, type, created_at
		FROM box_movements
		WHERE box_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, boxID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements for box %d: %w", boxID, err)
	}
	defer rows.Close()

	var movements []*models.BoxMovement
	for rows.Next() {
		var movement models.BoxMovement
		err := rows.Scan(
			&movement.ID,
			&movement.BoxID,
			&movement.Amount,
			&movement.Type,
			&movement.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan box movement: %w", err)
		}
		movements = append(movements, &movement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate box movements: %w", err)
	}

	return movements, nil
}

// ExistsEarningsSince reports whether an earnings movement was created for
// the box on or after the given instant
func (r *BoxMovementRepository) ExistsEarningsSince(ctx context.Context, boxID int64, since time.Time) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM box_movements
			WHERE box_id = $1 AND type = $2 AND created_at >= $3
		)`,
		boxID, models.MovementTypeEarnings, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check earnings movement for box %d: %w", boxID, err)
	}

	return exists, nil
}
