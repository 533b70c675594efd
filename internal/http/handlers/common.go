package handlers

import (
	"errors"
	"net/http"

	"campurent/internal/domain"
	"campurent/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError maps service failures onto HTTP responses. Every
// public operation surfaces exactly one typed failure; anything unknown is
// a 500 with the detail kept out of the payload.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		respondError(c, http.StatusBadRequest, "insufficient_balance", err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		respondError(c, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, domain.ErrOtpExpired):
		respondError(c, http.StatusBadRequest, "otp_expired", err.Error())
	case errors.Is(err, domain.ErrInvalidOtp):
		respondError(c, http.StatusBadRequest, "invalid_otp", err.Error())
	case errors.Is(err, domain.ErrAlreadyVerified):
		respondError(c, http.StatusConflict, "already_verified", err.Error())
	case errors.Is(err, domain.ErrPickupNotVerified):
		respondError(c, http.StatusConflict, "pickup_not_verified", err.Error())
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusForbidden, "not_authorized", err.Error())
	case domain.IsIneligibleState(err):
		respondError(c, http.StatusConflict, "ineligible_state", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}

// BindJSONOrError ensures the body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "empty_body", "request body required")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid request payload")
		return false
	}
	return true
}
