package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"fundo/database"
	"fundo/models"
)

// SavingsBoxRepository implements the service.SavingsBoxRepository interface
type SavingsBoxRepository struct {
	q queryable
}

// NewSavingsBoxRepository creates a new savings box repository
func NewSavingsBoxRepository(db *database.DB) *SavingsBoxRepository {
	return &SavingsBoxRepository{q: db.Pool}
}

func newSavingsBoxRepositoryWithTx(tx queryable) *SavingsBoxRepository {
	return &SavingsBoxRepository{q: tx}
}

// Create inserts a new box
func (r *SavingsBoxRepository) Create(ctx context.Context, box *models.SavingsBox) error {
	query := `
		INSERT INTO savings_boxes (cotista_id, name, goal_value, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		box.CotistaID,
		box.Name,
		box.GoalValue,
		box.Active,
	).Scan(&box.ID, &box.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create box for cotista %d: %w", box.CotistaID, err)
	}

	return nil
}

// GetOwnedActive retrieves an active box only if it belongs to the cotista
func (r *SavingsBoxRepository) GetOwnedActive(ctx context.Context, boxID, cotistaID int64) (*models.SavingsBox, error) {
	query := `
		SELECT id, cotista_id, name, goal_value, active, created_at
		FROM savings_boxes
		WHERE id = $1 AND cotista_id = $2 AND active
	`

	var box models.SavingsBox
	err := r.q.QueryRow(ctx, query, boxID, cotistaID).Scan(
		&box.ID,
		&box.CotistaID,
		&box.Name,
		&box.GoalValue,
		&box.Active,
		&box.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get box %d: %w", boxID, err)
	}

	return &box, nil
}

// ListWithBalance returns a cotista's active boxes with current balances.
// A box without a snapshot yet reports a zero balance.
func (r *SavingsBoxRepository) ListWithBalance(ctx context.Context, cotistaID int64) ([]*models.BoxWithBalance, error) {
	query := boxWithSnapshotSelect + `
		WHERE b.cotista_id = $1 AND b.active
		ORDER BY b.created_at DESC
	`

	rows, err := r.q.Query(ctx, query, cotistaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boxes for cotista %d: %w", cotistaID, err)
	}
	defer rows.Close()

	return collectBoxesWithBalance(rows)
}

// ListActiveWithLatestSnapshot returns every active box paired with its most
// recent snapshot balance. Boxes without a snapshot are flagged so the
// earnings scanner can skip them.
func (r *SavingsBoxRepository) ListActiveWithLatestSnapshot(ctx context.Context) ([]*models.BoxWithBalance, error) {
	query := boxWithSnapshotSelect + `
		WHERE b.active
		ORDER BY b.id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active boxes: %w", err)
	}
	defer rows.Close()

	return collectBoxesWithBalance(rows)
}

// Deactivate soft-disables a box owned by the cotista
func (r *SavingsBoxRepository) Deactivate(ctx context.Context, boxID, cotistaID int64) error {
	result, err := r.q.Exec(ctx,
		`UPDATE savings_boxes SET active = FALSE WHERE id = $1 AND cotista_id = $2 AND active`,
		boxID, cotistaID)
	if err != nil {
		return fmt.Errorf("failed to deactivate box %d: %w", boxID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("box %d not found for cotista %d", boxID, cotistaID)
	}

	return nil
}

const boxWithSnapshotSelect = `
	SELECT b.id, b.cotista_id, b.name, b.goal_value, b.active, b.created_at,
	       s.balance
	FROM savings_boxes b
	LEFT JOIN LATERAL (
		SELECT balance
		FROM box_snapshots
		WHERE box_id = b.id
		ORDER BY reference_date DESC
		LIMIT 1
	) s ON TRUE
`

func collectBoxesWithBalance(rows pgx.Rows) ([]*models.BoxWithBalance, error) {
	var boxes []*models.BoxWithBalance
	for rows.Next() {
		var entry models.BoxWithBalance
		var balance *decimal.Decimal

		err := rows.Scan(
			&entry.Box.ID,
			&entry.Box.CotistaID,
			&entry.Box.Name,
			&entry.Box.GoalValue,
			&entry.Box.Active,
			&entry.Box.CreatedAt,
			&balance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan box: %w", err)
		}

		if balance != nil {
			entry.CurrentBalance = *balance
			entry.HasSnapshot = true
		}
		boxes = append(boxes, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boxes: %w", err)
	}

	return boxes, nil
}
