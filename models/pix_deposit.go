package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus represents the state of a pending PIX deposit request
type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "PENDENTE"
	DepositStatusConfirmed DepositStatus = "CONFIRMADO"
	DepositStatusCanceled  DepositStatus = "CANCELADO"
)

// PixDeposit is a deposit request waiting for an off-band PIX payment.
// The payload is a static EMV code the investor scans to pay.
type PixDeposit struct {
	ID              int64           `db:"id"`
	CotistaID       int64           `db:"cotista_id"`
	RequestedAmount decimal.Decimal `db:"requested_amount"`
	Status          DepositStatus   `db:"status"`
	TxID            string          `db:"txid"`
	Payload         string          `db:"payload"`
	RequestedAt     time.Time       `db:"requested_at"`
}
