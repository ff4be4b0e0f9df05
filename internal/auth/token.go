package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types embedded in the token_type claim. An access token never
// authenticates a refresh flow and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is the uniform failure for any signature mismatch,
// structural corruption, expiry, or token-type mismatch. Callers never learn
// which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed claim set carried by both token kinds.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TenantID  uint   `json:"tenant_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Payload is the verified, decoded content of a token.
type Payload struct {
	UserID    uint
	TenantID  uint
	Role      string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies HMAC-signed JWTs.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService constructs a token service with the given secrets and TTLs.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// CreateAccessToken issues a short-lived access token.
func (s *TokenService) CreateAccessToken(userID, tenantID uint, role string) (string, error) {
	return s.create(userID, tenantID, role, TokenTypeAccess, s.accessSecret, s.accessTTL)
}

// CreateRefreshToken issues a long-lived refresh token.
func (s *TokenService) CreateRefreshToken(userID, tenantID uint, role string) (string, error) {
	return s.create(userID, tenantID, role, TokenTypeRefresh, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) create(userID, tenantID uint, role, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		TenantID:  tenantID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyAccessToken validates an access token and returns its payload.
func (s *TokenService) VerifyAccessToken(token string) (Payload, error) {
	return s.verify(token, TokenTypeAccess, s.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its payload.
func (s *TokenService) VerifyRefreshToken(token string) (Payload, error) {
	return s.verify(token, TokenTypeRefresh, s.refreshSecret)
}

func (s *TokenService) verify(tokenString, expectedType string, secret []byte) (Payload, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Payload{}, ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return Payload{}, ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Payload{}, ErrInvalidToken
	}

	return Payload{
		UserID:    claims.UserID,
		TenantID:  claims.TenantID,
		Role:      claims.Role,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
