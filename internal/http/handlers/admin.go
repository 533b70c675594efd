package handlers

import (
	"fmt"
	"net/http"

	"campurent/internal/http/middleware"
	"campurent/internal/services"
	"campurent/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	Delivery services.DeliveryService
	Admin    services.AdminService
	Wallet   *services.WalletService
}

type overrideRequest struct {
	TaskID           int64  `json:"task_id"`
	VerificationType string `json:"verification_type"`
}

// POST /api/admin/delivery/override
func (h AdminHandler) OverrideVerification(c *gin.Context) {
	var req overrideRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	task, err := h.Delivery.OverrideVerification(req.TaskID, middleware.CurrentUserID(c), req.VerificationType)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

type regenerateRequest struct {
	TaskID int64 `json:"task_id"`
}

// POST /api/admin/delivery/regenerate-otp
func (h AdminHandler) RegenerateOtp(c *gin.Context) {
	var req regenerateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	otp, err := h.Delivery.RegenerateOtp(req.TaskID, middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "new_otp": otp})
}

// POST /api/admin/delivery/sweep
func (h AdminHandler) SweepStale(c *gin.Context) {
	closed, err := h.Delivery.SweepStale(utils.NowUTC())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed_tasks": closed})
}

// GET /api/admin/actions
func (h AdminHandler) GetActions(c *gin.Context) {
	actions, err := h.Admin.ListActions()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

type walletAdjustRequest struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// POST /api/admin/wallet/credit — manual adjustment, always audited.
func (h AdminHandler) CreditWallet(c *gin.Context) {
	h.adjustWallet(c, "credit")
}

// POST /api/admin/wallet/debit
func (h AdminHandler) DebitWallet(c *gin.Context) {
	h.adjustWallet(c, "debit")
}

func (h AdminHandler) adjustWallet(c *gin.Context, kind string) {
	var req walletAdjustRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	var (
		balance decimal.Decimal
		err     error
	)
	if kind == "credit" {
		balance, err = h.Wallet.Credit(req.UserID, req.Amount, req.Description)
	} else {
		balance, err = h.Wallet.Debit(req.UserID, req.Amount, req.Description)
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	h.Admin.LogAction(middleware.CurrentUserID(c), "wallet_"+kind, "wallets", 0,
		fmt.Sprintf("user=%s amount=%s: %s", req.UserID, req.Amount.StringFixed(2), req.Description))
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
