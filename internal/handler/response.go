package handler

import (
	"net/http"

	"github.com/shinobi04/ThinkStore-backend/internal/middleware"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 全APIの共通レスポンス
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func message(msg string) Response {
	return Response{Message: msg}
}

// usecaseのHTTPErrorはそのまま、それ以外は500にしてログへ
func writeError(c echo.Context, log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, message(he.Message))
	}

	//500
	log.Error("request failed",
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, message("Internal server error"))
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	return middleware.UserIDFrom(c)
}

func clientInfo(c echo.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
