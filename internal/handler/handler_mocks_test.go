package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/handler"
	"github.com/shinobi04/ThinkStore-backend/internal/middleware"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mock: AuthService
// =====================

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, in usecase.SignupInput, client usecase.ClientInfo) (*usecase.AuthResult, error) {
	args := m.Called(ctx, in, client)
	r, _ := args.Get(0).(*usecase.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in usecase.LoginInput, client usecase.ClientInfo) (*usecase.AuthResult, error) {
	args := m.Called(ctx, in, client)
	r, _ := args.Get(0).(*usecase.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, rawRefresh string, client usecase.ClientInfo) (*usecase.SessionTokens, error) {
	args := m.Called(ctx, rawRefresh, client)
	r, _ := args.Get(0).(*usecase.SessionTokens)
	return r, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID int64, client usecase.ClientInfo) error {
	args := m.Called(ctx, userID, client)
	return args.Error(0)
}

func (m *MockAuthService) Activity(ctx context.Context, userID int64, limit int) ([]model.AuditLog, error) {
	args := m.Called(ctx, userID, limit)
	r, _ := args.Get(0).([]model.AuditLog)
	return r, args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID int64) (*usecase.UserDTO, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*usecase.UserDTO)
	return r, args.Error(1)
}

var _ handler.AuthService = (*MockAuthService)(nil)

// =====================
// Mock: ContentService
// =====================

type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) Add(ctx context.Context, userID int64, in usecase.AddContentInput) (*model.Content, error) {
	args := m.Called(ctx, userID, in)
	r, _ := args.Get(0).(*model.Content)
	return r, args.Error(1)
}

func (m *MockContentService) List(ctx context.Context, userID int64) ([]model.Content, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]model.Content)
	return r, args.Error(1)
}

func (m *MockContentService) Delete(ctx context.Context, userID int64, contentID int64) (*usecase.DeletedContent, error) {
	args := m.Called(ctx, userID, contentID)
	r, _ := args.Get(0).(*usecase.DeletedContent)
	return r, args.Error(1)
}

func (m *MockContentService) CreateShareLink(ctx context.Context, userID int64, contentID int64) (*usecase.ShareLinkOutput, bool, error) {
	args := m.Called(ctx, userID, contentID)
	r, _ := args.Get(0).(*usecase.ShareLinkOutput)
	return r, args.Bool(1), args.Error(2)
}

func (m *MockContentService) RevokeShareLink(ctx context.Context, userID int64, contentID int64) error {
	args := m.Called(ctx, userID, contentID)
	return args.Error(0)
}

func (m *MockContentService) GetShared(ctx context.Context, link string) (*usecase.SharedContent, error) {
	args := m.Called(ctx, link)
	r, _ := args.Get(0).(*usecase.SharedContent)
	return r, args.Error(1)
}

var _ handler.ContentService = (*MockContentService)(nil)

// =====================
// helper
// =====================

// ctxにuser_idを入れるだけの認証
func fakeAuth(userID int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserIDKey, userID)
			return next(c)
		}
	}
}

var testCookies = handler.CookieConfig{
	Secure:     true,
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
