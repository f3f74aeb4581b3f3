package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cotista represents an investor account owned by one user
type Cotista struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	AccountNumber int64     `db:"account_number"`
	CreatedAt     time.Time `db:"created_at"`

	// Joined from users
	OwnerName string `db:"-"`
}

// CotistaSummary aggregates the figures shown on the account card
type CotistaSummary struct {
	CotistaID      int64           `json:"cotistaId"`
	TotalBalance   decimal.Decimal `json:"totalBalance"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
	AccountNumber  int64           `json:"accountNumber"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// StatementEntry is one line of a cotista statement
type StatementEntry struct {
	ID      int64           `json:"id"`
	Date    string          `json:"date"` // YYYY-MM-DD
	Type    MovementType    `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
}

// Statement is a date-filtered listing of a cotista's movements
type Statement struct {
	CotistaName string           `json:"cotistaName"`
	Entries     []StatementEntry `json:"entries"`
}
