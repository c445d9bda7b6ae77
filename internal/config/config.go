package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	devAccessSecret  = "dev_access_secret_change_me"
	devRefreshSecret = "dev_refresh_secret_change_me"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（3000）
	Env  string // development / production

	DatabaseURL string // あれば POSTGRES_* より優先

	AccessTokenSecret  string        // accessToken 署名シークレット
	RefreshTokenSecret string        // refreshToken 署名シークレット
	AccessTokenTTL     time.Duration // 15分
	RefreshTokenTTL    time.Duration // 7日
	BcryptCost         int

	FEURL string // フロントURL（CORS）

	RedisURL         string // 空ならログイン試行制限は無効
	LoginMaxAttempts int
	LoginWindow      time.Duration

	TokenRetention   time.Duration // 期限切れrefreshTokenを残す期間
	JanitorInterval  time.Duration
	ShutdownTimeout  time.Duration
	AuthRateLimitRPS float64
}

// 本番かどうか（cookie の Secure に使う）
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "3000"),
		Env:  getenv("GO_ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AccessTokenSecret:  getenv("ACCESS_TOKEN_SECRET", devAccessSecret),
		RefreshTokenSecret: getenv("REFRESH_TOKEN_SECRET", devRefreshSecret),

		FEURL:    getenv("FE_URL", "http://localhost:3001"),
		RedisURL: os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.AccessTokenTTL, err = seconds("ACCESS_TOKEN_TTL_SECONDS", 15*60); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = seconds("REFRESH_TOKEN_TTL_SECONDS", 7*24*60*60); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = atoi("BCRYPT_COST", 12); err != nil {
		return Config{}, err
	}
	if cfg.LoginMaxAttempts, err = atoi("LOGIN_MAX_ATTEMPTS", 5); err != nil {
		return Config{}, err
	}
	if cfg.LoginWindow, err = seconds("LOGIN_WINDOW_SECONDS", 15*60); err != nil {
		return Config{}, err
	}
	if cfg.TokenRetention, err = seconds("REFRESH_TOKEN_RETENTION_SECONDS", 24*60*60); err != nil {
		return Config{}, err
	}
	if cfg.JanitorInterval, err = seconds("JANITOR_INTERVAL_SECONDS", 60*60); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = seconds("SHUTDOWN_TIMEOUT_SECONDS", 10); err != nil {
		return Config{}, err
	}
	rps, err := atoi("AUTH_RATE_LIMIT_RPS", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.AuthRateLimitRPS = float64(rps)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.IsProduction() {
		if c.AccessTokenSecret == devAccessSecret || c.RefreshTokenSecret == devRefreshSecret {
			return fmt.Errorf("token secrets must be set in production")
		}
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL_SECONDS must be shorter than REFRESH_TOKEN_TTL_SECONDS")
	}
	if c.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoi(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func seconds(key string, def int) (time.Duration, error) {
	i, err := atoi(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(i) * time.Second, nil
}
