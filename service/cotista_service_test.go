package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundo/models"
)

func TestSummary_AggregatesTotals(t *testing.T) {
	cotistas := new(MockCotistaRepository)
	movements := new(MockMovementRepository)
	service := NewCotistaService(cotistas, movements)
	ctx := context.Background()

	cotistas.On("GetByID", ctx, int64(7)).Return(&models.Cotista{
		ID:            7,
		AccountNumber: 10001,
	}, nil)
	movements.On("Totals", ctx, int64(7)).Return(models.MovementTotals{
		Total:          decimal.RequireFromString("1511.48"),
		Earnings:       decimal.RequireFromString("11.48"),
		InitialCapital: decimal.RequireFromString("1000.00"),
	}, nil)

	summary, err := service.Summary(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(10001), summary.AccountNumber)
	assert.True(t, summary.TotalBalance.Equal(decimal.RequireFromString("1511.48")))
	assert.True(t, summary.TotalEarnings.Equal(decimal.RequireFromString("11.48")))
	assert.True(t, summary.InitialCapital.Equal(decimal.RequireFromString("1000.00")))
}

func TestSummary_UnknownCotista(t *testing.T) {
	cotistas := new(MockCotistaRepository)
	service := NewCotistaService(cotistas, new(MockMovementRepository))
	ctx := context.Background()

	cotistas.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := service.Summary(ctx, 99)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatement_FormatsDates(t *testing.T) {
	cotistas := new(MockCotistaRepository)
	movements := new(MockMovementRepository)
	service := NewCotistaService(cotistas, movements)
	ctx := context.Background()

	cotistas.On("GetByUserID", ctx, int64(1)).Return(&models.Cotista{
		ID:        7,
		UserID:    1,
		OwnerName: "Maria",
	}, nil)

	movedAt := time.Date(2026, 2, 15, 18, 45, 0, 0, time.UTC)
	movements.On("GetByCotista", ctx, int64(7), (*time.Time)(nil), (*time.Time)(nil)).
		Return([]*models.CotistaMovement{
			{
				ID:        3,
				CotistaID: 7,
				Type:      models.MovementTypeContribution,
				Amount:    decimal.RequireFromString("500.00"),
				MovedAt:   movedAt,
			},
		}, nil)

	statement, err := service.Statement(ctx, 1, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "Maria", statement.CotistaName)
	require.Len(t, statement.Entries, 1)
	assert.Equal(t, "2026-02-15", statement.Entries[0].Date)
	assert.Equal(t, models.MovementTypeContribution, statement.Entries[0].Type)
}

func TestStatement_UserWithoutAccount(t *testing.T) {
	cotistas := new(MockCotistaRepository)
	service := NewCotistaService(cotistas, new(MockMovementRepository))
	ctx := context.Background()

	cotistas.On("GetByUserID", ctx, int64(5)).Return(nil, nil)

	_, err := service.Statement(ctx, 5, nil, nil)

	assert.ErrorIs(t, err, ErrNotFound)
}
