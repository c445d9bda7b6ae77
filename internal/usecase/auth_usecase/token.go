package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// 署名・形式・typ が不正
	ErrInvalidToken = errors.New("invalid token")
	// exp 切れ
	ErrExpiredToken = errors.New("token expired")
)

// accessToken / refreshToken 共通の claims
type Claims struct {
	Type         string `json:"typ"`
	TokenVersion int    `json:"tv,omitempty"`
	jwt.RegisteredClaims
}

// subをint64で返す
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// JWTを発行・検証する。access と refresh は別シークレット。
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	idGen         IDGenerator
}

// DI
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, idGen IDGenerator) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		idGen:         idGen,
	}
}

// accessToken発行
func (m *TokenManager) IssueAccess(userID int64, tokenVersion int, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.accessTTL)
	claims := Claims{
		Type:         TokenTypeAccess,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        m.idGen.NewID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// refreshToken発行。jti = DBの行ID。
func (m *TokenManager) IssueRefresh(userID int64, tokenID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.refreshTTL)
	claims := Claims{
		Type: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, exp, nil
}

func (m *TokenManager) ParseAccess(raw string) (*Claims, error) {
	return parse(raw, m.accessSecret, TokenTypeAccess)
}

func (m *TokenManager) ParseRefresh(raw string) (*Claims, error) {
	return parse(raw, m.refreshSecret, TokenTypeRefresh)
}

func parse(raw string, secret []byte, typ string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Type != typ || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DBに保存するハッシュ（sha256 hex）
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// 定数時間で比較
func TokenHashMatches(plain string, storedHash string) bool {
	h := HashToken(plain)
	return subtle.ConstantTimeCompare([]byte(h), []byte(storedHash)) == 1
}
