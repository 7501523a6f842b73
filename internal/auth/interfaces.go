package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims represents the identity carried by a bearer token.
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// NewTokenService builds the TokenService for the configured strategy.
func NewTokenService(strategy string, jwtSecret, pasetoKey []byte) (TokenService, error) {
	switch strategy {
	case "paseto":
		return NewPasetoService(pasetoKey)
	case "jwt", "":
		return NewJWTService(jwtSecret)
	default:
		return nil, errors.New("unknown token strategy: " + strategy)
	}
}
