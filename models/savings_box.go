package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsBox is a sub-ledger balance ("caixinha") owned by one cotista.
// Boxes are never deleted, only deactivated.
type SavingsBox struct {
	ID        int64            `db:"id"`
	CotistaID int64            `db:"cotista_id"`
	Name      string           `db:"name"`
	GoalValue *decimal.Decimal `db:"goal_value"`
	Active    bool             `db:"active"`
	CreatedAt time.Time        `db:"created_at"`
}

// BoxSnapshot is a point-in-time recorded balance for a box. At most one
// snapshot exists per (box, reference date); the most recent one by date
// is the authoritative current balance.
type BoxSnapshot struct {
	ID            int64           `db:"id"`
	BoxID         int64           `db:"box_id"`
	Balance       decimal.Decimal `db:"balance"`
	ReferenceDate time.Time       `db:"reference_date"`
	CreatedAt     time.Time       `db:"created_at"`
}

// BoxMovement is an immutable record of a box balance change. Withdrawals
// are stored with a negative amount.
type BoxMovement struct {
	ID        int64           `db:"id"`
	BoxID     int64           `db:"box_id"`
	Amount    decimal.Decimal `db:"amount"`
	Type      MovementType    `db:"type"`
	CreatedAt time.Time       `db:"created_at"`
}

// BoxWithBalance pairs a box with its latest snapshot balance for listings
// and for the earnings scanner.
type BoxWithBalance struct {
	Box            SavingsBox
	CurrentBalance decimal.Decimal
	HasSnapshot    bool
}
