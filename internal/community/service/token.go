package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is the JWT payload for a logged-in member.
type SessionClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"uid"`
	Role      string `json:"role,omitempty"`
}

// TokenService mints and verifies HS256 session tokens issued after a
// successful login-code verification.
type TokenService struct {
	Secret []byte
	TTL    time.Duration
	Clock  clockx.Clock
}

// Mint signs a session token for the account with its role at issue time.
// Role changes after minting are picked up on the next login, not here.
func (s *TokenService) Mint(accountID string, role domain.Role) (string, error) {
	now := s.Clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
		AccountID: accountID,
		Role:      string(role),
	})

	return token.SignedString(s.Secret)
}

// Verify parses and validates a session token, returning its claims.
func (s *TokenService) Verify(tokenString string) (SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Clock.Now),
	)
	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}

	return *claims, nil
}
