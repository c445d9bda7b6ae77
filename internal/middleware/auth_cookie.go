package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	AccessTokenCookie = "accessToken"

	CtxUserIDKey   = "user_id"  // int64
	CtxUsernameKey = "username" // string
)

// accessTokenを検証してユーザーを返す約束（AuthUsecaseが実装）
type Authenticator interface {
	Authenticate(ctx context.Context, rawAccess string) (*model.User, error)
}

type messageResponse struct {
	Message string `json:"message"`
}

// accessToken Cookie（なければ Authorization: Bearer）を検証する。
// 署名・期限に加えて token_version もDBと照合される。
func AuthCookie(authn Authenticator, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := accessTokenFrom(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Access token required"})
			}

			user, err := authn.Authenticate(c.Request().Context(), raw)
			if err != nil {
				if he, ok := usecase.AsHTTPError(err); ok {
					return c.JSON(he.Status, messageResponse{Message: he.Message})
				}
				log.Error("authenticate failed",
					zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
				return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
			}

			//contextへ保存
			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUsernameKey, user.Username)

			return next(c)
		}
	}
}

// AuthCookieが入れたuser_idを取り出す
func UserIDFrom(c echo.Context) (int64, bool) {
	id, ok := c.Get(CtxUserIDKey).(int64)
	return id, ok && id > 0
}

func accessTokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(AccessTokenCookie); err == nil && ck.Value != "" {
		return ck.Value
	}

	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
