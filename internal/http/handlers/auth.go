package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler is marketplace glue: it only issues the bearer token the rest
// of the API validates. Registration, profiles and KYC live elsewhere.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret []byte
}

type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	var (
		user         AuthUser
		passwordHash string
	)
	err := h.DB.QueryRow(`
		SELECT id, COALESCE(name,''), email, password_hash, COALESCE(role,'user')
		FROM users
		WHERE email = ?
		LIMIT 1`, req.Email).Scan(&user.ID, &user.Name, &user.Email, &passwordHash, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "wrong email or password")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "user lookup failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "wrong email or password")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "token signing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString, "user": user})
}
