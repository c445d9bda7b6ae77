package usecase_test

import (
	"context"
	"time"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	"github.com/shinobi04/ThinkStore-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

// =====================
// Mock: RefreshTokenRepository
// =====================

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByID(ctx context.Context, tokenID string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenID)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *MockRefreshTokenRepository) FindByIDForUpdate(ctx context.Context, tokenID string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenID)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkRotated(ctx context.Context, tokenID string, replacedBy string, revokedAt time.Time) error {
	args := m.Called(ctx, tokenID, replacedBy, revokedAt)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID int64, revokedAt time.Time) (int64, error) {
	args := m.Called(ctx, userID, revokedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

var _ repository.RefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

// =====================
// Mock: ContentRepository
// =====================

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, content *model.Content, tagNames []string) error {
	args := m.Called(ctx, content, tagNames)
	return args.Error(0)
}

func (m *MockContentRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Content, error) {
	args := m.Called(ctx, userID)
	cs, _ := args.Get(0).([]model.Content)
	return cs, args.Error(1)
}

func (m *MockContentRepository) FindByID(ctx context.Context, contentID int64) (*model.Content, error) {
	args := m.Called(ctx, contentID)
	c, _ := args.Get(0).(*model.Content)
	return c, args.Error(1)
}

func (m *MockContentRepository) FindByShareLink(ctx context.Context, link string) (*model.Content, error) {
	args := m.Called(ctx, link)
	c, _ := args.Get(0).(*model.Content)
	return c, args.Error(1)
}

func (m *MockContentRepository) SetShareLink(ctx context.Context, contentID int64, link string) error {
	args := m.Called(ctx, contentID, link)
	return args.Error(0)
}

func (m *MockContentRepository) ClearShareLink(ctx context.Context, contentID int64) error {
	args := m.Called(ctx, contentID)
	return args.Error(0)
}

func (m *MockContentRepository) DeleteByIDAndUserID(ctx context.Context, contentID int64, userID int64) error {
	args := m.Called(ctx, contentID, userID)
	return args.Error(0)
}

var _ repository.ContentRepository = (*MockContentRepository)(nil)

// =====================
// Mock: AuditLogRepository
// =====================

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.AuditLog, error) {
	args := m.Called(ctx, userID, limit)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

var _ repository.AuditLogRepository = (*MockAuditLogRepository)(nil)

// =====================
// Fake: TransactionManager
// =====================

// fn にモックをそのまま渡す。commit/rollbackは見ない。
type fakeTxManager struct {
	users    *MockUserRepository
	rtRepo   *MockRefreshTokenRepository
	audit    *MockAuditLogRepository
	lastErr  error
	txCalled int
}

func (f *fakeTxManager) Users() repository.UserRepository                  { return f.users }
func (f *fakeTxManager) RefreshTokens() repository.RefreshTokenRepository { return f.rtRepo }
func (f *fakeTxManager) AuditLogs() repository.AuditLogRepository         { return f.audit }

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	f.txCalled++
	f.lastErr = fn(f)
	return f.lastErr
}

// =====================
// Mock: validators / limiter
// =====================

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateSignup(ctx context.Context, username string, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateLogin(ctx context.Context, username string, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

type MockLoginLimiter struct {
	mock.Mock
}

func (m *MockLoginLimiter) Check(ctx context.Context, username, ip string) error {
	args := m.Called(ctx, username, ip)
	return args.Error(0)
}

func (m *MockLoginLimiter) RecordFailure(ctx context.Context, username, ip string) error {
	args := m.Called(ctx, username, ip)
	return args.Error(0)
}

func (m *MockLoginLimiter) Reset(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// =====================
// Fixed clock / id
// =====================

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	ids []string
	i   int
}

func (s *seqIDs) NewID() string {
	id := s.ids[s.i%len(s.ids)]
	s.i++
	return id
}
