package utils

import (
	"errors"
	"time" // Time for token expiration

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// SessionClaims is the payload of the session cookie
type SessionClaims struct {
	SessionID            string           `json:"sid"`       // Server-side session key
	Principal            domain.Principal `json:"principal"` // Identity descriptor, never credentials
	jwt.RegisteredClaims                  // Standard JWT claims
}

// ErrInvalidSessionToken is returned for tokens that fail parsing or validation
var ErrInvalidSessionToken = errors.New("invalid session token")

// GenerateSessionToken signs a session cookie value for the given session
func GenerateSessionToken(sessionID string, p domain.Principal, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		Principal: p,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseSessionToken parses and validates a session cookie value
func ParseSessionToken(tokenStr, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidSessionToken
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}
	return nil, ErrInvalidSessionToken
}
