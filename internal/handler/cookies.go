package handler

import (
	"net/http"
	"time"

	"github.com/shinobi04/ThinkStore-backend/internal/middleware"
)

const (
	RefreshTokenCookie = "refreshToken"
	// refreshTokenはrefreshエンドポイントにだけ送る
	refreshCookiePath = "/auth/refresh"
)

// Cookie属性。クリア時も同じ属性を使う。
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cc CookieConfig) access(value string, maxAge time.Duration) *http.Cookie {
	return cc.build(middleware.AccessTokenCookie, value, "/", maxAge)
}

func (cc CookieConfig) refresh(value string, maxAge time.Duration) *http.Cookie {
	return cc.build(RefreshTokenCookie, value, refreshCookiePath, maxAge)
}

func (cc CookieConfig) build(name, value, path string, maxAge time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge > 0 {
		ck.MaxAge = int(maxAge / time.Second)
	} else {
		// 削除
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	}
	return ck
}
