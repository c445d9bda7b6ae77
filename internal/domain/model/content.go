package model

import "time"

type ContentType string

const (
	ContentTypeDocument ContentType = "document"
	ContentTypeTweet    ContentType = "tweet"
	ContentTypeYoutube  ContentType = "youtube"
	ContentTypeLink     ContentType = "link"
)

// 許可されたtypeかどうか
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeDocument, ContentTypeTweet, ContentTypeYoutube, ContentTypeLink:
		return true
	default:
		return false
	}
}

// ユーザーが保存したアイテム。
// Linkは公開用の共有トークン（nilなら非公開）。
type Content struct {
	ID        int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	Type      ContentType `json:"type" gorm:"type:varchar(20);not null"`
	Title     string      `json:"title" gorm:"type:varchar(500);not null"`
	URL       string      `json:"url" gorm:"type:varchar(2048)"`
	Link      *string     `json:"link" gorm:"type:varchar(100);uniqueIndex"`
	UserID    int64       `json:"userId" gorm:"not null;index"`
	Tags      []Tag       `json:"tags" gorm:"many2many:content_tags;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time   `json:"-"`

	User User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
