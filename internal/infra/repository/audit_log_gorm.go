package repository

import (
	"context"

	"github.com/shinobi04/ThinkStore-backend/internal/domain/model"
	repo "github.com/shinobi04/ThinkStore-backend/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditLogGormRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.AuditLog, error) {
	switch {
	case limit <= 0:
		limit = 20
	case limit > 200:
		limit = 200
	}

	logs := []model.AuditLog{}
	//新しい順
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
