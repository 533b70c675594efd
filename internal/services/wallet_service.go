package services

import (
	"fmt"

	"campurent/internal/domain"
	"campurent/internal/domain/models"
	"campurent/internal/metrics"
	"campurent/internal/repositories"
	"campurent/internal/utils"

	"github.com/shopspring/decimal"
)

// balanceCASRetries bounds retry-on-conflict before surfacing Conflict.
const balanceCASRetries = 3

// WalletService is the only component allowed to mutate balances. Every
// mutation runs under the user's keyed lock and lands as a compare-and-swap
// on the previously read balance, so two concurrent debits can never both
// draw from the same stale read.
type WalletService struct {
	WalletRepo repositories.WalletRepository
	locks      *keyedLocks
}

func NewWalletService(repo repositories.WalletRepository) *WalletService {
	return &WalletService{
		WalletRepo: repo,
		locks:      newKeyedLocks(),
	}
}

// GetBalance reads the wallet, creating a zero-balance record on first
// access. Never fails on absence.
func (s *WalletService) GetBalance(userID string) (models.Wallet, error) {
	if userID == "" {
		return models.Wallet{}, domain.ValidationError{Field: "user_id", Msg: "must not be empty"}
	}
	return s.getOrCreate(userID)
}

// Debit withdraws from the wallet. Fails with ErrInsufficientBalance when
// the balance would go negative; the balance stays unchanged and no
// transaction record is written on failure.
func (s *WalletService) Debit(userID string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.apply(userID, models.TxTypeDebit, amount, description)
}

// Credit deposits into the wallet. Rejects amount <= 0.
func (s *WalletService) Credit(userID string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.apply(userID, models.TxTypeCredit, amount, description)
}

// GetHistory returns the user's ledger, most recent first.
func (s *WalletService) GetHistory(userID string) ([]models.WalletTransaction, error) {
	if userID == "" {
		return nil, domain.ValidationError{Field: "user_id", Msg: "must not be empty"}
	}
	return s.WalletRepo.ListTransactions(userID)
}

func (s *WalletService) apply(userID, txType string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if userID == "" {
		return decimal.Zero, domain.ValidationError{Field: "user_id", Msg: "must not be empty"}
	}
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	l := s.locks.get(userID)
	l.Lock()
	defer l.Unlock()

	for attempt := 0; attempt < balanceCASRetries; attempt++ {
		wallet, err := s.getOrCreate(userID)
		if err != nil {
			return decimal.Zero, err
		}

		newBalance := wallet.Balance.Add(amount)
		if txType == models.TxTypeDebit {
			newBalance = wallet.Balance.Sub(amount)
			if newBalance.IsNegative() {
				return decimal.Zero, domain.ErrInsufficientBalance
			}
		}

		ok, err := s.WalletRepo.UpdateBalanceCAS(userID, wallet.Balance, newBalance, utils.NowUTC())
		if err != nil {
			return decimal.Zero, domain.InternalError{Msg: "wallet update failed", Err: err}
		}
		if !ok {
			// another writer got in between the read and this update
			continue
		}

		s.recordTransaction(userID, txType, amount, description)
		metrics.WalletOperationsTotal.WithLabelValues(txType).Inc()
		return newBalance, nil
	}

	return decimal.Zero, domain.ConflictError{Resource: "wallet", Msg: "balance changed concurrently, retries exhausted"}
}

// recordTransaction appends the ledger record after the balance update
// succeeded. The balance is the source of truth; a failed append is logged
// and never rolls the balance change back.
func (s *WalletService) recordTransaction(userID, txType string, amount decimal.Decimal, description string) {
	tx := models.WalletTransaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CreatedAt:   utils.NowUTC(),
	}
	if err := s.WalletRepo.InsertTransaction(tx); err != nil {
		// one retry; the record is at-least-once, the balance already moved
		if err := s.WalletRepo.InsertTransaction(tx); err != nil {
			utils.LogEvent("", "wallet", "record_tx",
				fmt.Sprintf("ledger append failed user=%s type=%s amount=%s: %v", userID, txType, utils.FormatMoney(amount), err))
		}
	}
}

func (s *WalletService) getOrCreate(userID string) (models.Wallet, error) {
	wallet, found, err := s.WalletRepo.GetWallet(userID)
	if err != nil {
		return models.Wallet{}, domain.InternalError{Msg: "wallet lookup failed", Err: err}
	}
	if found {
		return wallet, nil
	}

	now := utils.NowUTC()
	if err := s.WalletRepo.CreateWallet(userID, now); err != nil {
		return models.Wallet{}, domain.InternalError{Msg: "wallet create failed", Err: err}
	}
	return models.Wallet{UserID: userID, Balance: decimal.Zero, LastUpdated: now}, nil
}
