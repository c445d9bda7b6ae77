package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 依存先の疎通確認
type PingFunc func(ctx context.Context) error

// /health, /ready
type HealthHandler struct {
	checks  map[string]PingFunc
	timeout time.Duration
	log     *zap.Logger
}

// DI。checks は名前→ping（DB, redis）
func NewHealthHandler(checks map[string]PingFunc, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{checks: checks, timeout: 2 * time.Second, log: log}
}

type readyData struct {
	Checks map[string]string `json:"checks"`
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
	e.GET("/ready", h.ready)
}

func (h *HealthHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, message("Health good"))
}

func (h *HealthHandler) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.log.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	msg := "Ready"
	if status != http.StatusOK {
		msg = "Not ready"
	}
	return c.JSON(status, Response{Message: msg, Data: readyData{Checks: results}})
}
