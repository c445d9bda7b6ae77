package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/infra/limiter"
	"github.com/shinobi04/ThinkStore-backend/internal/repository"
	auth "github.com/shinobi04/ThinkStore-backend/internal/usecase/auth_usecase"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 直前にローテーションされたトークンの再提示は、この時間内なら
// 同時リクエスト（複数タブ等）とみなして family を失効させない
const reuseGracePeriod = 10 * time.Second

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateSignup(ctx context.Context, username string, password string) error
	ValidateLogin(ctx context.Context, username string, password string) error
}

// JWTを発行・検証する約束
type TokenManager interface {
	IssueAccess(userID int64, tokenVersion int, now time.Time) (string, time.Time, error)
	IssueRefresh(userID int64, tokenID string, now time.Time) (string, time.Time, error)
	ParseAccess(raw string) (*auth.Claims, error)
	ParseRefresh(raw string) (*auth.Claims, error)
}

// ログイン失敗回数の制限
type LoginLimiter interface {
	Check(ctx context.Context, username, ip string) error
	RecordFailure(ctx context.Context, username, ip string) error
	Reset(ctx context.Context, username string) error
}

type UserDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type SignupInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// refreshTokenに紐付けるクライアント情報
type ClientInfo struct {
	IP        string
	UserAgent string
}

// handlerがCookieに詰める値
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type AuthResult struct {
	User   UserDTO
	Tokens SessionTokens
}

type AuthUsecase struct {
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	audit     repository.AuditLogRepository
	tx        repository.TransactionManager
	validator AuthValidator
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	tokens    TokenManager
	limiter   LoginLimiter
	idGen     auth.IDGenerator
	clock     auth.Clock
	log       *zap.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	audit repository.AuditLogRepository,
	tx repository.TransactionManager,
	validator AuthValidator,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	tokens TokenManager,
	loginLimiter LoginLimiter,
	idGen auth.IDGenerator,
	clock auth.Clock,
	log *zap.Logger,
) *AuthUsecase {
	if loginLimiter == nil {
		loginLimiter = limiter.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthUsecase{
		users:     users,
		rtRepo:    rtRepo,
		audit:     audit,
		tx:        tx,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		tokens:    tokens,
		limiter:   loginLimiter,
		idGen:     idGen,
		clock:     clock,
		log:       log,
	}
}

// 会員登録してそのままセッションを開始する
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput, client ClientInfo) (*AuthResult, error) {
	if err := u.validator.ValidateSignup(ctx, in.Username, in.Password); err != nil {
		return nil, err
	}

	// username重複チェック
	existing, err := u.users.FindByUsername(ctx, in.Username)
	if err == nil && existing != nil {
		return nil, usernameTaken(in.Username)
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, NewValidationError("Password must not exceed 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hashed,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// 同時登録で一意制約に当たった場合
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, usernameTaken(in.Username)
		}
		return nil, err
	}

	tokens, err := u.issueSession(ctx, u.rtRepo, user, client, u.clock.Now())
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: toUserDTO(user), Tokens: *tokens}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput, client ClientInfo) (*AuthResult, error) {
	if err := u.validator.ValidateLogin(ctx, in.Username, in.Password); err != nil {
		return nil, err
	}

	if err := u.limiter.Check(ctx, in.Username, client.IP); err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return nil, NewHTTPError(http.StatusTooManyRequests, "Too many login attempts")
		}
		// redis障害時はログだけ残して通す
		u.log.Warn("login limiter check failed", zap.Error(err))
	}

	//ユーザー取得
	user, err := u.users.FindByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	//パスワード照合（bcrypt）
	if user == nil || !u.verifier.Verify(in.Password, user.PasswordHash) {
		if ferr := u.limiter.RecordFailure(ctx, in.Username, client.IP); ferr != nil {
			u.log.Warn("login limiter record failed", zap.Error(ferr))
		}
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	if rerr := u.limiter.Reset(ctx, user.Username); rerr != nil {
		u.log.Warn("login limiter reset failed", zap.Error(rerr))
	}

	tokens, err := u.issueSession(ctx, u.rtRepo, user, client, u.clock.Now())
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: toUserDTO(user), Tokens: *tokens}, nil
}

// refreshTokenのローテーション。
// 旧トークン行を FOR UPDATE で取って、後継を作り、旧を条件付きで失効させる。
func (u *AuthUsecase) Refresh(ctx context.Context, rawRefresh string, client ClientInfo) (*SessionTokens, error) {
	if rawRefresh == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "Refresh token required")
	}

	claims, err := u.tokens.ParseRefresh(rawRefresh)
	if err != nil {
		// 期限切れも含めて検証NGは同じ扱い
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	subject, _ := claims.UserID()

	now := u.clock.Now()
	var (
		result   *SessionTokens
		reusedBy int64
	)

	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		rt, err := r.RefreshTokens().FindByIDForUpdate(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return NewHTTPError(http.StatusUnauthorized, "Token not found")
			}
			return err
		}

		if rt.UserID != subject || !auth.TokenHashMatches(rawRefresh, rt.TokenHash) {
			return NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		if rt.RevokedAt != nil {
			// ローテーション済みトークンの再利用 → family全体を失効
			if rt.IsRotated() && now.Sub(*rt.RevokedAt) > reuseGracePeriod {
				revoked, err := r.RefreshTokens().RevokeAllByUserID(ctx, rt.UserID, now)
				if err != nil {
					return err
				}
				if err := r.Users().IncrementTokenVersion(ctx, rt.UserID); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
					return err
				}
				if err := r.AuditLogs().Create(ctx, &model.AuditLog{
					UserID:       rt.UserID,
					Action:       model.AuditActionRefreshReuse,
					TokenID:      rt.ID,
					RevokedCount: revoked,
					IPAddress:    client.IP,
					UserAgent:    client.UserAgent,
					CreatedAt:    now,
				}); err != nil {
					return err
				}
				reusedBy = rt.UserID
				// 失効はcommitしたいのでnilで抜ける
				return nil
			}
			if rt.IsRotated() {
				return NewRefreshRacedError()
			}
			return NewHTTPError(http.StatusUnauthorized, "Token revoked")
		}

		if !rt.IsActive(now) {
			return NewHTTPError(http.StatusUnauthorized, "Token expired")
		}

		user, err := r.Users().FindByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return NewHTTPError(http.StatusUnauthorized, "User not found")
			}
			return err
		}

		tokens, newID, err := u.issueSessionWithID(ctx, r.RefreshTokens(), user, client, now)
		if err != nil {
			return err
		}

		//旧tokenを失効（同時refreshに負けたら0件）
		if err := r.RefreshTokens().MarkRotated(ctx, rt.ID, newID, now); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return NewRefreshRacedError()
			}
			return err
		}

		result = tokens
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reusedBy != 0 {
		u.log.Warn("refresh token reuse detected; revoked all sessions",
			zap.Int64("user_id", reusedBy),
			zap.String("token_id", claims.ID),
			zap.String("ip", client.IP),
		)
		return nil, NewHTTPError(http.StatusUnauthorized, "Token reuse detected")
	}

	return result, nil
}

// 全refreshTokenを失効 + token_version++ で発行済みaccessTokenも無効化
func (u *AuthUsecase) Logout(ctx context.Context, userID int64, client ClientInfo) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	now := u.clock.Now()
	return u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		revoked, err := r.RefreshTokens().RevokeAllByUserID(ctx, userID, now)
		if err != nil {
			return err
		}
		if err := r.Users().IncrementTokenVersion(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return NewHTTPError(http.StatusUnauthorized, "User not found")
			}
			return err
		}
		return r.AuditLogs().Create(ctx, &model.AuditLog{
			UserID:       userID,
			Action:       model.AuditActionLogout,
			RevokedCount: revoked,
			IPAddress:    client.IP,
			UserAgent:    client.UserAgent,
			CreatedAt:    now,
		})
	})
}

// 自分のセキュリティイベント（新しい順）
func (u *AuthUsecase) Activity(ctx context.Context, userID int64, limit int) ([]model.AuditLog, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return u.audit.ListByUserID(ctx, userID, limit)
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		return nil, err
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// accessTokenを検証してユーザーを返す（middleware用）
func (u *AuthUsecase) Authenticate(ctx context.Context, rawAccess string) (*model.User, error) {
	claims, err := u.tokens.ParseAccess(rawAccess)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, NewHTTPError(http.StatusUnauthorized, "Token expired")
		}
		return nil, NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	userID, _ := claims.UserID()

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		return nil, err
	}

	// logout / reuse検知後の古いaccessToken
	if user.TokenVersion != claims.TokenVersion {
		return nil, NewHTTPError(http.StatusUnauthorized, "Token revoked")
	}

	return user, nil
}

// 期限切れから retention 以上たったrefreshTokenを削除
func (u *AuthUsecase) PurgeExpiredTokens(ctx context.Context, retention time.Duration) (int64, error) {
	return u.rtRepo.DeleteExpired(ctx, u.clock.Now().Add(-retention))
}

func (u *AuthUsecase) issueSession(ctx context.Context, rtRepo repository.RefreshTokenRepository, user *model.User, client ClientInfo, now time.Time) (*SessionTokens, error) {
	tokens, _, err := u.issueSessionWithID(ctx, rtRepo, user, client, now)
	return tokens, err
}

// refresh行を保存してから access / refresh を返す
func (u *AuthUsecase) issueSessionWithID(ctx context.Context, rtRepo repository.RefreshTokenRepository, user *model.User, client ClientInfo, now time.Time) (*SessionTokens, string, error) {
	tokenID := u.idGen.NewID()

	refresh, refreshExp, err := u.tokens.IssueRefresh(user.ID, tokenID, now)
	if err != nil {
		return nil, "", err
	}

	rt := &model.RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(refresh),
		ExpiresAt: refreshExp,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
	}
	if err := rtRepo.Create(ctx, rt); err != nil {
		return nil, "", fmt.Errorf("save refresh token: %w", err)
	}

	access, accessExp, err := u.tokens.IssueAccess(user.ID, user.TokenVersion, now)
	if err != nil {
		return nil, "", err
	}

	return &SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, tokenID, nil
}

func usernameTaken(username string) error {
	return NewHTTPError(http.StatusConflict, fmt.Sprintf("User %s already exists", username))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
