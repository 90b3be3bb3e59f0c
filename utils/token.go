package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// ScopeFull marks a fully authenticated session.
	ScopeFull = "full"
	// ScopeTwoFactorPending marks a session held between password login and
	// second-factor verification. It grants access to the verification
	// endpoint only.
	ScopeTwoFactorPending = "2fa_pending"
)

const (
	accessTokenTTL  = 12 * time.Hour
	pendingTokenTTL = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims define the session data carried in the JWT.
type TokenClaims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// GenerateAccessToken issues a full-scope session token.
func (m *TokenManager) GenerateAccessToken(userID uint, email, role string) (string, error) {
	return m.generate(userID, email, role, ScopeFull, accessTokenTTL)
}

// GeneratePendingToken issues the short-lived token that holds a session
// until the second factor is verified.
func (m *TokenManager) GeneratePendingToken(userID uint, email, role string) (string, error) {
	return m.generate(userID, email, role, ScopeTwoFactorPending, pendingTokenTTL)
}

func (m *TokenManager) generate(userID uint, email, role, scope string, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token of either scope.
func (m *TokenManager) ValidateToken(raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
