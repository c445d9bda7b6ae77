package server

import (
	"github.com/shinobi04/ThinkStore-backend/internal/config"
	"github.com/shinobi04/ThinkStore-backend/internal/handler"
	"github.com/shinobi04/ThinkStore-backend/internal/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Content *handler.ContentHandler
	Health  *handler.HealthHandler
	// accessToken検証（AuthUsecase）
	Authn middleware.Authenticator
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, log *zap.Logger, h Handlers) {
	authMW := middleware.AuthCookie(h.Authn, log)

	h.Health.RegisterRoutes(e)

	authGroup := e.Group("/auth", authRateLimiter(cfg.AuthRateLimitRPS))
	h.Auth.RegisterRoutes(authGroup, authMW)

	api := e.Group("/api/v1")
	h.Content.RegisterRoutes(api, authMW)
}
