package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
)

// AuthUsecaseが実装する
type AuthService interface {
	Signup(ctx context.Context, in usecase.SignupInput, client usecase.ClientInfo) (*usecase.AuthResult, error)
	Login(ctx context.Context, in usecase.LoginInput, client usecase.ClientInfo) (*usecase.AuthResult, error)
	Refresh(ctx context.Context, rawRefresh string, client usecase.ClientInfo) (*usecase.SessionTokens, error)
	Logout(ctx context.Context, userID int64, client usecase.ClientInfo) error
	Me(ctx context.Context, userID int64) (*usecase.UserDTO, error)
	Activity(ctx context.Context, userID int64, limit int) ([]model.AuditLog, error)
}

// /auth のHTTP
type AuthHandler struct {
	uc      AuthService
	cookies CookieConfig
	log     *zap.Logger
}

// DI
func NewAuthHandler(uc AuthService, cookies CookieConfig, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{uc: uc, cookies: cookies, log: log}
}

// /auth/signup, /auth/login のリクエストボディ。
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userData struct {
	User usecase.UserDTO `json:"user"`
}

type activityData struct {
	Events []model.AuditLog `json:"events"`
}

// /auth 配下を登録。authMWはログイン必須のルートだけに付ける。
func (h *AuthHandler) RegisterRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout, authMW)
	g.GET("/me", h.me, authMW)
	g.GET("/activity", h.activity, authMW)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}

	out, err := h.uc.Signup(c.Request().Context(), usecase.SignupInput{
		Username: req.Username,
		Password: req.Password,
	}, clientInfo(c))
	if err != nil {
		return writeError(c, h.log, err)
	}

	h.setSessionCookies(c, out.Tokens)
	return c.JSON(http.StatusCreated, Response{
		Message: "User created successfully",
		Data:    userData{User: out.User},
	})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}, clientInfo(c))
	if err != nil {
		return writeError(c, h.log, err)
	}

	h.setSessionCookies(c, out.Tokens)
	return c.JSON(http.StatusOK, Response{
		Message: fmt.Sprintf("Welcome %s", out.User.Username),
		Data:    userData{User: out.User},
	})
}

func (h *AuthHandler) refresh(c echo.Context) error {
	var raw string
	if ck, err := c.Cookie(RefreshTokenCookie); err == nil {
		raw = ck.Value
	}

	tokens, err := h.uc.Refresh(c.Request().Context(), raw, clientInfo(c))
	if err != nil {
		// 使えないrefreshTokenはブラウザからも消す。
		// 同時refreshの負け側は勝った側のCookieを上書きしないよう残す
		if he, ok := usecase.AsHTTPError(err); ok && he.Status == http.StatusUnauthorized && !errors.Is(err, usecase.ErrRefreshRaced) {
			h.clearSessionCookies(c)
		}
		return writeError(c, h.log, err)
	}

	h.setSessionCookies(c, *tokens)
	return c.JSON(http.StatusOK, message("Token refreshed successfully"))
}

func (h *AuthHandler) logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	if err := h.uc.Logout(c.Request().Context(), userID, clientInfo(c)); err != nil {
		return writeError(c, h.log, err)
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, message("Logged out successfully"))
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	user, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, Response{Message: "User fetched successfully", Data: user})
}

// logout / refreshToken再利用などの履歴
func (h *AuthHandler) activity(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, message("Not authenticated"))
	}

	// limit（default 20, 1..200）
	limit := defaultActivityLimit
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > maxActivityLimit {
			return c.JSON(http.StatusBadRequest, message("Invalid limit"))
		}
		limit = l
	}

	events, err := h.uc.Activity(c.Request().Context(), userID, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(http.StatusOK, Response{Message: "Activity fetched successfully", Data: activityData{Events: events}})
}

func (h *AuthHandler) setSessionCookies(c echo.Context, t usecase.SessionTokens) {
	c.SetCookie(h.cookies.access(t.AccessToken, h.cookies.AccessTTL))
	c.SetCookie(h.cookies.refresh(t.RefreshToken, h.cookies.RefreshTTL))
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(h.cookies.access("", 0))
	c.SetCookie(h.cookies.refresh("", 0))
}
