package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/shinobi04/ThinkStore-backend/internal/config"
	"github.com/shinobi04/ThinkStore-backend/internal/handler"
	"github.com/shinobi04/ThinkStore-backend/internal/infra/cache"
	"github.com/shinobi04/ThinkStore-backend/internal/infra/db"
	"github.com/shinobi04/ThinkStore-backend/internal/infra/limiter"
	infraRepo "github.com/shinobi04/ThinkStore-backend/internal/infra/repository"
	"github.com/shinobi04/ThinkStore-backend/internal/janitor"
	"github.com/shinobi04/ThinkStore-backend/internal/logger"
	"github.com/shinobi04/ThinkStore-backend/internal/server"
	"github.com/shinobi04/ThinkStore-backend/internal/usecase"
	auth "github.com/shinobi04/ThinkStore-backend/internal/usecase/auth_usecase"
	"github.com/shinobi04/ThinkStore-backend/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// .env は任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.Init(logger.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	checks := map[string]handler.PingFunc{
		"db": func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
	}

	//ログイン試行制限（REDIS_URLがなければ無効）
	var loginLimiter usecase.LoginLimiter = limiter.Noop{}
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		loginLimiter = limiter.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_URL is not set; login throttling disabled")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	contentRepo := infraRepo.NewContentGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := auth.UUIDGenerator{}
	clock := auth.RealClock{}
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, idGen)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo, rtRepo, auditRepo, txm,
		validator.NewAuthValidator(),
		hasher, hasher, tokens, loginLimiter,
		idGen, clock, log,
	)
	contentUC := usecase.NewContentUsecase(contentRepo, validator.NewContentValidator(), auth.UUIDv7Generator{})

	//Handler生成
	cookies := handler.CookieConfig{
		Secure:     cfg.IsProduction(),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	e := server.New(cfg, log, server.Handlers{
		Auth:    handler.NewAuthHandler(authUC, cookies, log),
		Content: handler.NewContentHandler(contentUC, log),
		Health:  handler.NewHealthHandler(checks, log),
		Authn:   authUC,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go janitor.Run(ctx, authUC, cfg.JanitorInterval, cfg.TokenRetention, log)

	//Server起動
	if err := server.Start(ctx, e, ":"+cfg.Port, cfg.ShutdownTimeout, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
