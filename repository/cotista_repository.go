package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundo/database"
	"fundo/models"
)

// CotistaRepository implements the service.CotistaRepository interface
type CotistaRepository struct {
	q queryable
}

// NewCotistaRepository creates a new cotista repository
func NewCotistaRepository(db *database.DB) *CotistaRepository {
	return &CotistaRepository{q: db.Pool}
}

func newCotistaRepositoryWithTx(tx queryable) *CotistaRepository {
	return &CotistaRepository{q: tx}
}

const cotistaSelect = `
	SELECT c.id, c.user_id, c.account_number, c.created_at, u.name
	FROM cotistas c
	JOIN users u ON u.id = c.user_id
`

func scanCotista(row pgx.Row) (*models.Cotista, error) {
	var cotista models.Cotista
	err := row.Scan(
		&cotista.ID,
		&cotista.UserID,
		&cotista.AccountNumber,
		&cotista.CreatedAt,
		&cotista.OwnerName,
	)
	if err != nil {
		return nil, err
	}
	return &cotista, nil
}

// GetByID retrieves a cotista by id
func (r *CotistaRepository) GetByID(ctx context.Context, id int64) (*models.Cotista, error) {
	cotista, err := scanCotista(r.q.QueryRow(ctx, cotistaSelect+` WHERE c.id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cotista %d: %w", id, err)
	}
	return cotista, nil
}

// GetByUserID retrieves the cotista owned by a user
func (r *CotistaRepository) GetByUserID(ctx context.Context, userID int64) (*models.Cotista, error) {
	cotista, err := scanCotista(r.q.QueryRow(ctx, cotistaSelect+` WHERE c.user_id = $1`, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cotista for user %d: %w", userID, err)
	}
	return cotista, nil
}

// GetAll returns all cotistas with their owner's name
func (r *CotistaRepository) GetAll(ctx context.Context) ([]*models.Cotista, error) {
	rows, err := r.q.Query(ctx, cotistaSelect+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get cotistas: %w", err)
	}
	defer rows.Close()

	var cotistas []*models.Cotista
	for rows.Next() {
		cotista, err := scanCotista(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cotista: %w", err)
		}
		cotistas = append(cotistas, cotista)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cotistas: %w", err)
	}

	return cotistas, nil
}

// Create inserts a new cotista account
func (r *CotistaRepository) Create(ctx context.Context, cotista *models.Cotista) error {
	query := `
		INSERT INTO cotistas (user_id, account_number)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, cotista.UserID, cotista.AccountNumber).
		Scan(&cotista.ID, &cotista.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cotista for user %d: %w", cotista.UserID, err)
	}

	return nil
}

// NextAccountNumber allocates the next sequential account number. Account
// numbers start at 10001. Callers run this inside the same transaction as
// the insert so concurrent creations cannot collide silently; the unique
// constraint backs it up.
func (r *CotistaRepository) NextAccountNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(account_number), 10000) + 1 FROM cotistas`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate account number: %w", err)
	}
	return next, nil
}
