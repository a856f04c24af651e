// Package auth issues and verifies session tokens and tracks the
// one-time anti-CSRF state values used during the Google OAuth handshake.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL applies when the caller does not request an explicit
// lifetime. The login flow issues longer-lived tokens.
const DefaultTokenTTL = 15 * time.Minute

var (
	// ErrNoToken means the request carried no session token at all.
	ErrNoToken = errors.New("auth: no session token")

	// ErrInvalidToken means the token failed signature or expiry checks.
	ErrInvalidToken = errors.New("auth: invalid session token")
)

// IssueToken signs a session token embedding the user's email.
// DefaultTokenTTL is the floor: callers may lengthen a session's
// lifetime but never shorten it below the default.
func IssueToken(email string, secret []byte, ttl time.Duration) (string, error) {
	if ttl < DefaultTokenTTL {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies a session token and returns the embedded email.
// Failures of any kind are reported as ErrInvalidToken.
func ParseToken(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	email := strings.TrimSpace(claims.Subject)
	if email == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return email, nil
}
