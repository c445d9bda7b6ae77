package model

import "time"

// refreshTokenの1行。平文は保存せずsha256のみ。
type RefreshToken struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            int64      `json:"userId" gorm:"not null;index"`
	TokenHash         string     `json:"-" gorm:"not null;uniqueIndex"`
	ExpiresAt         time.Time  `json:"expiresAt" gorm:"not null;index"`
	RevokedAt         *time.Time `json:"revokedAt" gorm:"index"`
	ReplacedByTokenID *string    `json:"replacedByTokenId" gorm:"type:uuid"`
	IPAddress         string     `json:"ipAddress" gorm:"type:varchar(64)"`
	UserAgent         string     `json:"userAgent" gorm:"type:text"`
	CreatedAt         time.Time  `json:"createdAt"`

	User User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// 有効（失効していない・期限内）かどうか
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// ローテーション済み（後継がある）かどうか
func (t *RefreshToken) IsRotated() bool {
	return t.RevokedAt != nil && t.ReplacedByTokenID != nil
}
