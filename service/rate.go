package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// Nominal annual reference rate (CDI) and the fund's multiplier over it.
// These should eventually come from a rates table; for now they are fixed.
const (
	AnnualReferenceRate     = 0.1265
	ReferenceRateMultiplier = 1.15
)

// MonthlyEarningRate derives the monthly accrual rate from the annual
// reference rate: ((1 + annual)^(1/12) - 1) * multiplier.
func MonthlyEarningRate() float64 {
	monthly := math.Pow(1+AnnualReferenceRate, 1.0/12) - 1
	return monthly * ReferenceRateMultiplier
}

// EarningsAmount applies the monthly rate to a balance and rounds to
// cents, half-up. Only the rate itself is a float; the monetary
// multiplication happens in decimal arithmetic.
func EarningsAmount(balance decimal.Decimal, rate float64) decimal.Decimal {
	return balance.Mul(decimal.NewFromFloat(rate)).Round(2)
}
