package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundo/database"
	"fundo/models"
)

// PixDepositRepository implements the service.PixDepositRepository interface
type PixDepositRepository struct {
	q queryable
}

// NewPixDepositRepository creates a new PIX deposit repository
func NewPixDepositRepository(db *database.DB) *PixDepositRepository {
	return &PixDepositRepository{q: db.Pool}
}

func newPixDepositRepositoryWithTx(tx queryable) *PixDepositRepository {
	return &PixDepositRepository{q: tx}
}

// Create inserts a new pending deposit request
func (r *PixDepositRepository) Create(ctx context.Context, deposit *models.PixDeposit) error {
	query := `
		INSERT INTO pix_deposits (cotista_id, requested_amount, status, txid, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, requested_at
	`

	err := r.q.QueryRow(ctx, query,
		deposit.CotistaID,
		deposit.RequestedAmount,
		deposit.Status,
		deposit.TxID,
		deposit.Payload,
	).Scan(&deposit.ID, &deposit.RequestedAt)

	if err != nil {
		return fmt.Errorf("failed to create deposit request for cotista %d: %w", deposit.CotistaID, err)
	}

	return nil
}

// GetByCotista returns deposit requests for a cotista, newest first
func (r *PixDepositRepository) GetByCotista(ctx context.Context, cotistaID int64) ([]*models.PixDeposit, error) {
	query := `
		SELECT id, cotista_id, requested_amount, status, txid, payload, requested_at
		FROM pix_deposits
		WHERE cotista_id = $1
		ORDER BY requested_at DESC
	`

	rows, err := r.q.Query(ctx, query, cotistaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposits for cotista %d: %w", cotistaID, err)
	}
	defer rows.Close()

	var deposits []*models.PixDeposit
	for rows.Next() {
		var deposit models.PixDeposit
		err := rows.Scan(
			&deposit.ID,
			&deposit.CotistaID,
			&deposit.RequestedAmount,
			&deposit.Status,
			&deposit.TxID,
			&deposit.Payload,
			&deposit.RequestedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, &deposit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}

	return deposits, nil
}

// GetByID retrieves a deposit request by id
func (r *PixDepositRepository) GetByID(ctx context.Context, id int64) (*models.PixDeposit, error) {
	query := `
		SELECT id, cotista_id, requested_amount, status, txid, payload, requested_at
		FROM pix_deposits
		WHERE id = $1
	`

	var deposit models.PixDeposit
	err := r.q.QueryRow(ctx, query, id).Scan(
		&deposit.ID,
		&deposit.CotistaID,
		&deposit.RequestedAmount,
		&deposit.Status,
		&deposit.TxID,
		&deposit.Payload,
		&deposit.RequestedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit %d: %w", id, err)
	}

	return &deposit, nil
}

// SetStatus transitions a deposit request. The expected current status
// keeps concurrent settlements from double-applying.
func (r *PixDepositRepository) SetStatus(ctx context.Context, id int64, from, to models.DepositStatus) error {
	result, err := r.q.Exec(ctx,
		`UPDATE pix_deposits SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update deposit %d status: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("deposit %d is not %s", id, from)
	}

	return nil
}
