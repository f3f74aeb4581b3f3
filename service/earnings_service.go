package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fundo/events"
	"fundo/models"
)

// EarningsJobName identifies the accrual batch in the job run audit log
const EarningsJobName = "process-earnings"

type earningsService struct {
	uowFactory UnitOfWorkFactory
	boxRepo    SavingsBoxRepository
	jobRunRepo JobRunRepository
	bus        *events.Bus
}

// NewEarningsService creates the earnings batch service. The box and job
// run repositories are pool-backed: the scan is read-only and the audit
// record must be written even when a posting transaction failed.
func NewEarningsService(uowFactory UnitOfWorkFactory, boxRepo SavingsBoxRepository, jobRunRepo JobRunRepository, bus *events.Bus) EarningsService {
	return &earningsService{
		uowFactory: uowFactory,
		boxRepo:    boxRepo,
		jobRunRepo: jobRunRepo,
		bus:        bus,
	}
}

// ProcessEarnings posts the monthly accrual to every eligible box. Boxes
// are processed sequentially; a failed box is logged and skipped so a
// retry only touches boxes not yet posted. Exactly one job run record is
// written per invocation.
func (s *earningsService) ProcessEarnings(ctx context.Context, now time.Time) (*models.EarningsResult, error) {
	start := now
	runDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	rate := MonthlyEarningRate()
	logger := log.WithFields(log.Fields{"job": EarningsJobName, "rate": rate})
	logger.Info("Starting earnings batch")

	var (
		processed int
		failed    int
		status    = models.JobStatusFailure
		message   string
	)

	// The audit record is written on every exit path. Its own failure is
	// only surfaced in the process log.
	defer func() {
		run := &models.JobRun{
			JobName:    EarningsJobName,
			ExecutedAt: start,
			Processed:  processed,
			Status:     status,
			Message:    message,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err := s.jobRunRepo.Create(ctx, run); err != nil {
			logger.WithError(err).Error("Failed to write job run record")
		}
	}()

	boxes, err := s.boxRepo.ListActiveWithLatestSnapshot(ctx)
	if err != nil {
		message = fmt.Sprintf("scan failed: %v", err)
		return nil, fmt.Errorf("failed to list active boxes: %w", err)
	}

	for _, box := range boxes {
		posted, err := s.postBox(ctx, box, rate, runDate)
		if err != nil {
			failed++
			logger.WithError(err).WithField("boxId", box.Box.ID).Error("Failed to post earnings for box")
			continue
		}
		if posted {
			processed++
		}
	}

	if failed == 0 {
		status = models.JobStatusSuccess
		message = fmt.Sprintf("Processed %d boxes (rate %.6f).", processed, rate)
	} else {
		message = fmt.Sprintf("Processed %d boxes, %d failed (rate %.6f).", processed, failed, rate)
	}

	logger.WithFields(log.Fields{"processed": processed, "failed": failed}).Info("Earnings batch finished")

	s.bus.Emit(ctx, events.EarningsPostedEvent{
		Processed:   processed,
		Failed:      failed,
		RateApplied: rate,
	})

	return &models.EarningsResult{
		Success:     failed == 0,
		Count:       processed,
		RateApplied: rate,
		Message:     message,
	}, nil
}

// postBox applies the idempotency checks for one box and, when due, posts
// the accrual movement and the new snapshot in one transaction. Returns
// whether a posting happened.
func (s *earningsService) postBox(ctx context.Context, box *models.BoxWithBalance, rate float64, runDate time.Time) (bool, error) {
	// A box with no snapshot has no principal to accrue on
	if !box.HasSnapshot {
		return false, nil
	}
	if box.CurrentBalance.IsZero() {
		return false, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Primary idempotency guard: a snapshot for the run date means this
	// box was already processed today.
	exists, err := uow.BoxSnapshots().ExistsForDate(ctx, box.Box.ID, runDate)
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	if exists {
		return false, nil
	}

	// Secondary guard, independent of the snapshot check
	hasEarnings, err := uow.BoxMovements().ExistsEarningsSince(ctx, box.Box.ID, runDate)
	if err != nil {
		return false, fmt.Errorf("failed to check earnings movement: %w", err)
	}
	if hasEarnings {
		return false, nil
	}

	amount := EarningsAmount(box.CurrentBalance, rate)
	if amount.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}

	newBalance := box.CurrentBalance.Add(amount)

	movement := &models.BoxMovement{
		BoxID:  box.Box.ID,
		Amount: amount,
		Type:   models.MovementTypeEarnings,
	}
	if err := uow.BoxMovements().Record(ctx, movement); err != nil {
		return false, fmt.Errorf("failed to record earnings movement: %w", err)
	}

	snapshot := &models.BoxSnapshot{
		BoxID:         box.Box.ID,
		Balance:       newBalance,
		ReferenceDate: runDate,
	}
	if err := uow.BoxSnapshots().Create(ctx, snapshot); err != nil {
		// A concurrent run got there first; the rollback discards our
		// movement and the box counts as already posted.
		if errors.Is(err, ErrDuplicateSnapshot) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create snapshot: %w", err)
	}

	uow.EventBus().Publish(events.BoxBalanceChangeEvent{
		BoxID:         box.Box.ID,
		CotistaID:     box.Box.CotistaID,
		MovementType:  models.MovementTypeEarnings,
		ChangeAmount:  amount,
		BalanceBefore: box.CurrentBalance,
		BalanceAfter:  newBalance,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
