package handlers

import (
	"net/http"

	"campurent/internal/http/middleware"
	"campurent/internal/services"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	Wallet    *services.WalletService
	Statement services.StatementService
}

// GET /api/wallet
func (h WalletHandler) GetBalance(c *gin.Context) {
	wallet, err := h.Wallet.GetBalance(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": wallet.Balance, "last_updated": wallet.LastUpdated})
}

// GET /api/wallet/transactions
func (h WalletHandler) GetHistory(c *gin.Context) {
	history, err := h.Wallet.GetHistory(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

// GET /api/wallet/statement
func (h WalletHandler) GetStatementPDF(c *gin.Context) {
	data, filename, err := h.Statement.GenerateStatement(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
