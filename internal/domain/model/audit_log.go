package model

import "time"

// セキュリティ上の出来事
type AuditAction string

const (
	AuditActionLogout AuditAction = "LOGOUT"
	//ローテーション済みrefreshTokenが再提示された
	AuditActionRefreshReuse AuditAction = "REFRESH_TOKEN_REUSE"
)

// 監査ログ。
// 「誰の」「何が」「どこから」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//対象ユーザー
	UserID int64 `gorm:"not null;index" json:"userId"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//関係するrefreshTokenのID（logoutでは空）
	TokenID string `gorm:"type:varchar(64)" json:"tokenId"`

	//失効させた件数
	RevokedCount int64 `gorm:"not null;default:0" json:"revokedCount"`

	IPAddress string `gorm:"type:varchar(64)" json:"ipAddress"`
	UserAgent string `gorm:"type:text" json:"userAgent"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
