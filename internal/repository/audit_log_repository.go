package repository

import (
	"context"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
)

// 監査ログは追記のみ
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	ListByUserID(ctx context.Context, userID int64, limit int) ([]model.AuditLog, error)
}
