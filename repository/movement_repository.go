package repository

import (
	"context"
	"fmt"
	"time"

	"fundo/database"
	"fundo/models"
)

// MovementRepository implements the service.MovementRepository interface
type MovementRepository struct {
	q queryable
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{q: db.Pool}
}

func newMovementRepositoryWithTx(tx queryable) *MovementRepository {
	return &MovementRepository{q: tx}
}

// Record appends a movement
func (r *MovementRepository) Record(ctx context.Context, movement *models.CotistaMovement) error {
	query := `
		INSERT INTO cotista_movements (cotista_id, type, amount)
		VALUES ($1, $2, $3)
		RETURNING id, moved_at
	`

	err := r.q.QueryRow(ctx, query,
		movement.CotistaID,
		movement.Type,
		movement.Amount,
	).Scan(&movement.ID, &movement.MovedAt)

	if err != nil {
		return fmt.Errorf("failed to record movement for cotista %d: %w", movement.CotistaID, err)
	}

	return nil
}

// GetByCotista returns movements for a cotista, newest first, optionally
// bounded by [from, to)
func (r *MovementRepository) GetByCotista(ctx context.Context, cotistaID int64, from, to *time.Time) ([]*models.CotistaMovement, error) {
	query := `
		SELECT id, cotista_id, type, amount, moved_at
		FROM cotista_movements
		WHERE cotista_id = $1
		  AND ($2::timestamptz IS NULL OR moved_at >= $2)
		  AND ($3::timestamptz IS NULL OR moved_at < $3)
		ORDER BY moved_at DESC
	`

	rows, err := r.q.Query(ctx, query, cotistaID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements for cotista %d: %w", cotistaID, err)
	}
	defer rows.Close()

	var movements []*models.CotistaMovement
	for rows.Next() {
		var movement models.CotistaMovement
		err := rows.Scan(
			&movement.ID,
			&movement.CotistaID,
			&movement.Type,
			&movement.Amount,
			&movement.MovedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, &movement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}

	return movements, nil
}

// Totals aggregates a cotista's movements for the summary card. The initial
// capital is the first contribution on record.
func (r *MovementRepository) Totals(ctx context.Context, cotistaID int64) (models.MovementTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'RENDIMENTO'), 0),
			COALESCE(
				(SELECT amount FROM cotista_movements
				 WHERE cotista_id = $1 AND type = 'APORTE'
				 ORDER BY moved_at ASC LIMIT 1),
				0
			)
		FROM cotista_movements
		WHERE cotista_id = $1
	`

	var totals models.MovementTotals
	err := r.q.QueryRow(ctx, query, cotistaID).Scan(
		&totals.Total,
		&totals.Earnings,
		&totals.InitialCapital,
	)
	if err != nil {
		return models.MovementTotals{}, fmt.Errorf("failed to aggregate movements for cotista %d: %w", cotistaID, err)
	}

	return totals, nil
}
