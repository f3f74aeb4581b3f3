package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fundo/database"
	"fundo/models"
)

// JobRunRepository implements the service.JobRunRepository interface
type JobRunRepository struct {
	q queryable
}

// NewJobRunRepository creates a new job run repository
func NewJobRunRepository(db *database.DB) *JobRunRepository {
	return &JobRunRepository{q: db.Pool}
}

func newJobRunRepositoryWithTx(tx queryable) *JobRunRepository {
	return &JobRunRepository{q: tx}
}

// Create inserts a run record
func (r *JobRunRepository) Create(ctx context.Context, run *models.JobRun) error {
	query := `
		INSERT INTO job_runs (job_name, executed_at, processed, status, message, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		run.JobName,
		run.ExecutedAt,
		run.Processed,
		run.Status,
		run.Message,
		run.DurationMs,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create job run for %s: %w", run.JobName, err)
	}

	return nil
}

// GetLatest returns the most recent run of a job, or nil
func (r *JobRunRepository) GetLatest(ctx context.Context, jobName string) (*models.JobRun, error) {
	query := `
		SELECT id, job_name, executed_at, processed, status, message, duration_ms, created_at
		FROM job_runs
		WHERE job_name = $1
		ORDER BY executed_at DESC
		LIMIT 1
	`

	var run models.JobRun
	err := r.q.QueryRow(ctx, query, jobName).Scan(
		&run.ID,
		&run.JobName,
		&run.ExecutedAt,
		&run.Processed,
		&run.Status,
		&run.Message,
		&run.DurationMs,
		&run.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run of %s: %w", jobName, err)
	}

	return &run, nil
}
