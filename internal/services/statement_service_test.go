package services

import (
	"testing"
	"time"

	"campurent/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatementServiceGenerate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT user_id").WithArgs("u1").
		WillReturnRows(walletRows("u1", "60.00"))
	mock.ExpectQuery("SELECT id").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "amount", "description", "created_at"}).
			AddRow(2, "u1", "debit", "40.00", "rental fee", time.Now().UTC()).
			AddRow(1, "u1", "credit", "100.00", "top up", time.Now().UTC().Add(-time.Hour)))

	svc := StatementService{Wallet: NewWalletService(repositories.WalletRepository{DB: db})}

	pdf, filename, err := svc.GenerateStatement("u1")
	if err != nil {
		t.Fatalf("GenerateStatement returned error: %v", err)
	}
	if len(pdf) == 0 || filename != "STATEMENT_u1.pdf" {
		t.Fatalf("GenerateStatement returned empty data or wrong filename: %q", filename)
	}
}
