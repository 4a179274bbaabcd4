package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// TokenManager issues and verifies HS256 access/refresh token pairs.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *TokenManager) GenerateToken(userID uint, kind string) (string, error) {
	ttl := m.accessTTL
	if kind == TokenRefresh {
		ttl = m.refreshTTL
	}
	claims := jwt.MapClaims{
		"user_id": strconv.FormatUint(uint64(userID), 10),
		"type":    kind,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GeneratePair returns an access and a refresh token for userID.
func (m *TokenManager) GeneratePair(userID uint) (access, refresh string, err error) {
	access, err = m.GenerateToken(userID, TokenAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.GenerateToken(userID, TokenRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseToken verifies tokenStr and returns the raw user_id claim. A token
// without a "type" claim is treated as an access token.
func (m *TokenManager) ParseToken(tokenStr, kind string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", ErrInvalidClaims
	}

	tokenKind, _ := claims["type"].(string)
	if tokenKind == "" {
		tokenKind = TokenAccess
	}
	if tokenKind != kind {
		return "", ErrInvalidClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", ErrInvalidClaims
	}
	return userID, nil
}
