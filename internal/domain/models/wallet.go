package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds one balance per user, created lazily with balance 0.
type Wallet struct {
	UserID      string          `json:"user_id"`
	Balance     decimal.Decimal `json:"balance"`
	LastUpdated time.Time       `json:"last_updated"`
}

const (
	TxTypeDebit  = "debit"
	TxTypeCredit = "credit"
)

// WalletTransaction is append-only; rows are never edited or deleted.
type WalletTransaction struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
