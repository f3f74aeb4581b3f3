package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType represents the type of a ledger movement
type MovementType string

const (
	MovementTypeContribution MovementType = "APORTE"
	MovementTypeWithdrawal   MovementType = "RESGATE"
	MovementTypeEarnings     MovementType = "RENDIMENTO"
)

// MovementTotals aggregates a cotista's movements for the account summary
type MovementTotals struct {
	Total          decimal.Decimal
	Earnings       decimal.Decimal
	InitialCapital decimal.Decimal
}

// CotistaMovement is an append-only record of a fund-level balance change
type CotistaMovement struct {
	ID        int64           `db:"id"`
	CotistaID int64           `db:"cotista_id"`
	Type      MovementType    `db:"type"`
	Amount    decimal.Decimal `db:"amount"`
	MovedAt   time.Time       `db:"moved_at"`
}
