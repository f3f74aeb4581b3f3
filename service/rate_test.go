package service

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyEarningRate(t *testing.T) {
	rate := MonthlyEarningRate()

	// ((1 + 12.65%)^(1/12) - 1) * 1.15
	expected := (math.Pow(1.1265, 1.0/12) - 1) * 1.15
	assert.InEpsilon(t, expected, rate, 1e-12)

	// Roughly 1.147% a month
	assert.InDelta(t, 0.01147, rate, 0.0001)
}

func TestEarningsAmount_RoundsToCents(t *testing.T) {
	amount := EarningsAmount(decimal.RequireFromString("1000.00"), 0.01)
	assert.True(t, amount.Equal(decimal.RequireFromString("10.00")), "got %s", amount)

	// Half a cent rounds up
	amount = EarningsAmount(decimal.RequireFromString("100.00"), 0.012345)
	assert.True(t, amount.Equal(decimal.RequireFromString("1.23")), "got %s", amount)

	amount = EarningsAmount(decimal.RequireFromString("1000.00"), 0.001235)
	assert.True(t, amount.Equal(decimal.RequireFromString("1.24")), "got %s", amount)
}

func TestEarningsAmount_ZeroBalance(t *testing.T) {
	amount := EarningsAmount(decimal.Zero, MonthlyEarningRate())
	assert.True(t, amount.IsZero())
}
