package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedIDGen struct{ id string }

func (g fixedIDGen) NewID() string { return g.id }

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, fixedIDGen{id: "jti-1"})
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	m := newTestManager()
	now := time.Now()

	raw, exp, err := m.IssueAccess(42, 3, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), exp, time.Second)

	claims, err := m.ParseAccess(raw)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "jti-1", claims.ID)
}

func TestTokenManager_RefreshRoundTrip(t *testing.T) {
	m := newTestManager()

	raw, _, err := m.IssueRefresh(7, "row-id", time.Now())
	require.NoError(t, err)

	claims, err := m.ParseRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, "row-id", claims.ID)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
}

func TestTokenManager_Expired(t *testing.T) {
	m := newTestManager()

	raw, _, err := m.IssueAccess(1, 0, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = m.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RefreshNotAcceptedAsAccess(t *testing.T) {
	m := newTestManager()

	refresh, _, err := m.IssueRefresh(1, "row-id", time.Now())
	require.NoError(t, err)

	// シークレットが違うので署名エラー
	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongTypeSameSecret(t *testing.T) {
	m := NewTokenManager("same", "same", time.Minute, time.Hour, fixedIDGen{id: "x"})

	refresh, _, err := m.IssueRefresh(1, "row-id", time.Now())
	require.NoError(t, err)

	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsOtherAlgorithm(t *testing.T) {
	m := newTestManager()

	claims := Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = m.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseAccess("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseRefresh("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenHashMatches(t *testing.T) {
	h := HashToken("plain-token")

	assert.Len(t, h, 64)
	assert.True(t, TokenHashMatches("plain-token", h))
	assert.False(t, TokenHashMatches("other-token", h))
}
