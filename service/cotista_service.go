package service

import (
	"context"
	"time"

	"fundo/models"
)

type cotistaService struct {
	cotistaRepo  CotistaRepository
	movementRepo MovementRepository
}

// NewCotistaService creates the investor account service
func NewCotistaService(cotistaRepo CotistaRepository, movementRepo MovementRepository) CotistaService {
	return &cotistaService{
		cotistaRepo:  cotistaRepo,
		movementRepo: movementRepo,
	}
}

// ListCotistas returns all investor accounts
func (s *cotistaService) ListCotistas(ctx context.Context) ([]*models.Cotista, error) {
	return s.cotistaRepo.GetAll(ctx)
}

// GetCotista returns one investor account
func (s *cotistaService) GetCotista(ctx context.Context, cotistaID int64) (*models.Cotista, error) {
	cotista, err := s.cotistaRepo.GetByID(ctx, cotistaID)
	if err != nil {
		return nil, err
	}
	if cotista == nil {
		return nil, ErrNotFound
	}
	return cotista, nil
}

// Summary returns the aggregated figures for the account card: total
// balance, accumulated earnings and the first contribution.
func (s *cotistaService) Summary(ctx context.Context, cotistaID int64) (*models.CotistaSummary, error) {
	cotista, err := s.GetCotista(ctx, cotistaID)
	if err != nil {
		return nil, err
	}

	totals, err := s.movementRepo.Totals(ctx, cotistaID)
	if err != nil {
		return nil, err
	}

	return &models.CotistaSummary{
		CotistaID:      cotista.ID,
		TotalBalance:   totals.Total,
		TotalEarnings:  totals.Earnings,
		InitialCapital: totals.InitialCapital,
		AccountNumber:  cotista.AccountNumber,
		CreatedAt:      cotista.CreatedAt,
	}, nil
}

// Statement returns the movement listing for the cotista owned by a user,
// optionally bounded by [from, to).
func (s *cotistaService) Statement(ctx context.Context, userID int64, from, to *time.Time) (*models.Statement, error) {
	cotista, err := s.cotistaRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cotista == nil {
		return nil, ErrNotFound
	}

	movements, err := s.movementRepo.GetByCotista(ctx, cotista.ID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]models.StatementEntry, 0, len(movements))
	for _, m := range movements {
		entries = append(entries, models.StatementEntry{
			ID:     m.ID,
			Date:   m.MovedAt.Format("2006-01-02"),
			Type:   m.Type,
			Amount: m.Amount,
		})
	}

	return &models.Statement{
		CotistaName: cotista.OwnerName,
		Entries:     entries,
	}, nil
}
