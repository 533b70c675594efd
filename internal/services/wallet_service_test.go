package services

import (
	"errors"
	"testing"
	"time"

	"campurent/internal/domain"
	"campurent/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func newWalletTestService(t *testing.T) (*WalletService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := NewWalletService(repositories.WalletRepository{DB: db})
	return svc, mock, func() { db.Close() }
}

func walletRows(userID, balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "balance", "last_updated"}).
		AddRow(userID, balance, time.Now().UTC())
}

func TestWalletCreditCreatesWalletOnFirstUse(t *testing.T) {
	svc, mock, done := newWalletTestService(t)
	defer done()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT user_id").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance", "last_updated"}))
	mock.ExpectExec("INSERT INTO wallets").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE wallets").
		WithArgs("100.00", sqlmock.AnyArg(), "u1", "0.00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs("u1", "credit", "100.00", "top up", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	balance, err := svc.Credit("u1", decimal.NewFromInt(100), "top up")
	if err != nil {
		t.Fatalf("credit error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100", balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletDebitInsufficientLeavesLedgerUntouched(t *testing.T) {
	svc, mock, done := newWalletTestService(t)
	defer done()

	mock.ExpectQuery("SELECT user_id").WithArgs("u1").
		WillReturnRows(walletRows("u1", "50.00"))

	_, err := svc.Debit("u1", decimal.NewFromInt(80), "over-draw")
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	// no UPDATE, no transaction record
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletRejectsNonPositiveAmounts(t *testing.T) {
	svc, _, done := newWalletTestService(t)
	defer done()

	if _, err := svc.Debit("u1", decimal.Zero, "noop"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero debit err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.Credit("u1", decimal.NewFromInt(-5), "noop"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("negative credit err = %v, want ErrInvalidAmount", err)
	}
}

func TestWalletDebitRetriesOnConcurrentWrite(t *testing.T) {
	svc, mock, done := newWalletTestService(t)
	defer done()

	// first attempt reads 100 but the CAS update matches no row
	mock.ExpectQuery("SELECT user_id").WithArgs("u1").
		WillReturnRows(walletRows("u1", "100.00"))
	mock.ExpectExec("UPDATE wallets").
		WithArgs("60.00", sqlmock.AnyArg(), "u1", "100.00").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// second attempt sees the concurrent write and succeeds
	mock.ExpectQuery("SELECT user_id").WithArgs("u1").
		WillReturnRows(walletRows("u1", "90.00"))
	mock.ExpectExec("UPDATE wallets").
		WithArgs("50.00", sqlmock.AnyArg(), "u1", "90.00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	balance, err := svc.Debit("u1", decimal.NewFromInt(40), "rental fee")
	if err != nil {
		t.Fatalf("debit error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance = %s, want 50", balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletConflictAfterRetriesExhausted(t *testing.T) {
	svc, mock, done := newWalletTestService(t)
	defer done()

	for i := 0; i < balanceCASRetries; i++ {
		mock.ExpectQuery("SELECT user_id").WithArgs("u1").
			WillReturnRows(walletRows("u1", "100.00"))
		mock.ExpectExec("UPDATE wallets").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	_, err := svc.Debit("u1", decimal.NewFromInt(10), "contended")
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletHistoryNewestFirst(t *testing.T) {
	svc, mock, done := newWalletTestService(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "amount", "description", "created_at"}).
		AddRow(2, "u1", "debit", "40.00", "rental fee", time.Now().UTC()).
		AddRow(1, "u1", "credit", "100.00", "top up", time.Now().UTC().Add(-time.Hour))
	mock.ExpectQuery("SELECT id").WithArgs("u1").WillReturnRows(rows)

	history, err := svc.GetHistory("u1")
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len = %d, want 2", len(history))
	}
	if history[0].ID != 2 || history[0].Type != "debit" {
		t.Fatalf("unexpected first record: %+v", history[0])
	}
}
