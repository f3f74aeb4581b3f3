package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fundo/database"
	"fundo/models"
	"fundo/service"
)

// BoxSnapshotRepository implements the service.BoxSnapshotRepository interface
type BoxSnapshotRepository struct {
	q queryable
}

// NewBoxSnapshotRepository creates a new box snapshot repository
func NewBoxSnapshotRepository(db *database.DB) *BoxSnapshotRepository {
	return &BoxSnapshotRepository{q: db.Pool}
}

func newBoxSnapshotRepositoryWithTx(tx queryable) *BoxSnapshotRepository {
	return &BoxSnapshotRepository{q: tx}
}

// dateOnly normalizes a timestamp to its calendar date
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Create appends a snapshot. The (box_id, reference_date) unique constraint
// maps to service.ErrDuplicateSnapshot so callers can treat a concurrent
// double-post as "already done".
func (r *BoxSnapshotRepository) Create(ctx context.Context, snapshot *models.BoxSnapshot) error {
	snapshot.ReferenceDate = dateOnly(snapshot.ReferenceDate)

	query := `
		INSERT INTO box_snapshots (box_id, balance, reference_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		snapshot.BoxID,
		snapshot.Balance,
		snapshot.ReferenceDate,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return service.ErrDuplicateSnapshot
		}
		return fmt.Errorf("failed to create snapshot for box %d: %w", snapshot.BoxID, err)
	}

	return nil
}

// Upsert writes the snapshot for the (box, reference date) pair, replacing
// the balance when the row already exists
func (r *BoxSnapshotRepository) Upsert(ctx context.Context, snapshot *models.BoxSnapshot) error {
	snapshot.ReferenceDate = dateOnly(snapshot.ReferenceDate)

	query := `
		INSERT INTO box_snapshots (box_id, balance, reference_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (box_id, reference_date)
		DO UPDATE SET balance = EXCLUDED.balance
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		snapshot.BoxID,
		snapshot.Balance,
		snapshot.ReferenceDate,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert snapshot for box %d: %w", snapshot.BoxID, err)
	}

	return nil
}

// GetLatest returns the most recent snapshot for a box, or nil
func (r *BoxSnapshotRepository) GetLatest(ctx context.Context, boxID int64) (*models.BoxSnapshot, error) {
	query := `
		SELECT id, box_id, balance, reference_date, created_at
		FROM box_snapshots
		WHERE box_id = $1
		ORDER BY reference_date DESC
		LIMIT 1
	`

	var snapshot models.BoxSnapshot
	err := r.q.QueryRow(ctx, query, boxID).Scan(
		&snapshot.ID,
		&snapshot.BoxID,
		&snapshot.Balance,
		&snapshot.ReferenceDate,
		&snapshot.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot for box %d: %w", boxID, err)
	}

	return &snapshot, nil
}

// ExistsForDate reports whether a snapshot exists for the box on a date
func (r *BoxSnapshotRepository) ExistsForDate(ctx context.Context, boxID int64, date time.Time) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM box_snapshots WHERE box_id = $1 AND reference_date = $2)`,
		boxID, dateOnly(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot for box %d: %w", boxID, err)
	}

	return exists, nil
}
