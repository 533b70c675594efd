package repositories

import (
	"database/sql"
	"errors"
	"time"

	"campurent/internal/domain/models"

	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	DB *sql.DB
}

// GetWallet fetches one wallet row. found=false when the user has no wallet
// yet; the service creates it lazily.
func (r WalletRepository) GetWallet(userID string) (models.Wallet, bool, error) {
	query := `
		SELECT user_id,
		       COALESCE(balance, 0),
		       last_updated
		FROM wallets
		WHERE user_id=? LIMIT 1`

	var (
		w          models.Wallet
		balanceRaw string
	)
	err := r.DB.QueryRow(query, userID).Scan(&w.UserID, &balanceRaw, &w.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Wallet{}, false, nil
		}
		return models.Wallet{}, false, err
	}
	w.Balance, err = decimal.NewFromString(balanceRaw)
	if err != nil {
		return models.Wallet{}, false, err
	}
	return w, true, nil
}

// CreateWallet inserts a zero-balance wallet. Safe against a concurrent
// create for the same user.
func (r WalletRepository) CreateWallet(userID string, now time.Time) error {
	_, err := r.DB.Exec(`
		INSERT INTO wallets (user_id, balance, last_updated)
		VALUES (?, 0, ?)
		ON DUPLICATE KEY UPDATE user_id=user_id`,
		userID, now)
	return err
}

// UpdateBalanceCAS writes the new balance only when the stored balance still
// matches the one previously read. Returns false when the row moved under us.
func (r WalletRepository) UpdateBalanceCAS(userID string, oldBalance, newBalance decimal.Decimal, now time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE wallets
		SET balance=?, last_updated=?
		WHERE user_id=? AND balance=?`,
		newBalance.StringFixed(2), now, userID, oldBalance.StringFixed(2))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InsertTransaction appends one ledger record. Records are never updated or
// deleted afterwards.
func (r WalletRepository) InsertTransaction(tx models.WalletTransaction) error {
	_, err := r.DB.Exec(`
		INSERT INTO wallet_transactions (user_id, type, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		tx.UserID, tx.Type, tx.Amount.StringFixed(2), tx.Description, tx.CreatedAt)
	return err
}

// ListTransactions returns the user's ledger, most recent first.
func (r WalletRepository) ListTransactions(userID string) ([]models.WalletTransaction, error) {
	rows, err := r.DB.Query(`
		SELECT id,
		       user_id,
		       COALESCE(type,''),
		       COALESCE(amount, 0),
		       COALESCE(description,''),
		       created_at
		FROM wallet_transactions
		WHERE user_id=?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.WalletTransaction{}
	for rows.Next() {
		var (
			tx        models.WalletTransaction
			amountRaw string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &amountRaw, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Amount, err = decimal.NewFromString(amountRaw)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
