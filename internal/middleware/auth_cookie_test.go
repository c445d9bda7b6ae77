package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/middleware"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// =====================
// Mock: Authenticator
// =====================

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, rawAccess string) (*model.User, error) {
	args := m.Called(ctx, rawAccess)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type mwMessage struct {
	Message string `json:"message"`
}

type mwOK struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// =====================
// helper
// =====================

func newProtected(authn middleware.Authenticator, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, _ := middleware.UserIDFrom(c)
		name, _ := c.Get(middleware.CtxUsernameKey).(string)
		return c.JSON(http.StatusOK, mwOK{UserID: id, Username: name})
	}, middleware.AuthCookie(authn, log))
	return e
}

func run(e *echo.Echo, cookie string, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: cookie})
	}
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var r mwMessage
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r.Message
}

// =====================
// AuthCookie
// =====================

// Cookieもヘッダもなし => 401
func TestAuthCookie_NoToken(t *testing.T) {
	authn := new(MockAuthenticator)
	e := newProtected(authn, nil)

	rec := run(e, "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", decodeMessage(t, rec))
	authn.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

// Bearer以外のスキームは無視
func TestAuthCookie_BadScheme(t *testing.T) {
	authn := new(MockAuthenticator)
	e := newProtected(authn, nil)

	rec := run(e, "", "Token abc.def.ghi")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", decodeMessage(t, rec))
}

// 正常：ctxに値が入る
func TestAuthCookie_CookieSetsContext(t *testing.T) {
	authn := new(MockAuthenticator)
	authn.On("Authenticate", mock.Anything, "cookie-token").Return(&model.User{ID: 123, Username: "thinker"}, nil)
	e := newProtected(authn, nil)

	rec := run(e, "cookie-token", "Bearer header-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body mwOK
	_ = json.NewDecoder(rec.Body).Decode(&body)
	assert.Equal(t, int64(123), body.UserID)
	assert.Equal(t, "thinker", body.Username)
	authn.AssertExpectations(t)
}

func TestAuthCookie_BearerFallback(t *testing.T) {
	authn := new(MockAuthenticator)
	authn.On("Authenticate", mock.Anything, "header-token").Return(&model.User{ID: 7, Username: "thinker"}, nil)
	e := newProtected(authn, nil)

	rec := run(e, "", "bearer header-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	authn.AssertExpectations(t)
}

// usecaseの401はそのまま返す（token_version不一致など）
func TestAuthCookie_PassesThroughHTTPError(t *testing.T) {
	authn := new(MockAuthenticator)
	authn.On("Authenticate", mock.Anything, "stale").Return(nil, usecase.NewHTTPError(http.StatusUnauthorized, "Token revoked"))
	e := newProtected(authn, nil)

	rec := run(e, "stale", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token revoked", decodeMessage(t, rec))
}

// DB障害などは500にしてログに残す
func TestAuthCookie_InternalErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	authn := new(MockAuthenticator)
	authn.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("db down"))
	e := newProtected(authn, zap.New(core))

	rec := run(e, "tok", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeMessage(t, rec))
	assert.Equal(t, 1, logs.FilterMessage("authenticate failed").Len())
}
