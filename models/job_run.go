package models

import (
	"time"
)

// Job run statuses recorded in the audit log
const (
	JobStatusSuccess = "SUCCESS"
	JobStatusFailure = "FAILURE"
)

// JobRun is the audit record of one execution of a batch job. Written
// exactly once per invocation and never read back by application logic.
type JobRun struct {
	ID         int64     `db:"id"`
	JobName    string    `db:"job_name"`
	ExecutedAt time.Time `db:"executed_at"`
	Processed  int       `db:"processed"`
	Status     string    `db:"status"`
	Message    string    `db:"message"`
	DurationMs int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

// EarningsResult summarizes one earnings batch run for the HTTP caller
type EarningsResult struct {
	Success     bool    `json:"success"`
	Count       int     `json:"count"`
	RateApplied float64 `json:"rateApplied"`
	Message     string  `json:"message"`
}
