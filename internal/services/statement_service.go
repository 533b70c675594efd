package services

import (
	"bytes"
	"fmt"

	"campurent/internal/domain/models"
	"campurent/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// StatementService renders a user's wallet ledger as a downloadable PDF.
type StatementService struct {
	Wallet *WalletService
}

// GenerateStatement builds the statement PDF and a suggested filename.
func (s StatementService) GenerateStatement(userID string) ([]byte, string, error) {
	wallet, err := s.Wallet.GetBalance(userID)
	if err != nil {
		return nil, "", err
	}
	history, err := s.Wallet.GetHistory(userID)
	if err != nil {
		return nil, "", err
	}

	utils.LogEvent("", "statement", "generate", fmt.Sprintf("user_id=%s entries=%d", userID, len(history)))
	return buildStatementPDF(wallet, history)
}

func buildStatementPDF(wallet models.Wallet, history []models.WalletTransaction) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Wallet Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "WALLET STATEMENT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "User        : "+wallet.UserID)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Balance     : "+utils.FormatMoney(wallet.Balance))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Generated   : "+utils.FormatDateTime(utils.NowUTC()))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(38, 8, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Type", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(100, 8, "Description", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, tx := range history {
		amount := utils.FormatMoney(tx.Amount)
		if tx.Type == models.TxTypeDebit {
			amount = "-" + amount
		}
		pdf.CellFormat(38, 7, utils.FormatDateTime(tx.CreatedAt), "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 7, tx.Type, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, amount, "1", 0, "R", false, 0, "")
		pdf.CellFormat(100, 7, truncate(tx.Description, 60), "1", 1, "", false, 0, "")
	}

	if len(history) == 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 7, "No transactions recorded.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("STATEMENT_%s.pdf", wallet.UserID)
	return buf.Bytes(), filename, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
