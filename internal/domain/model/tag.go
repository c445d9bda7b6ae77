package model

// タグ名は trim + 小文字 で一意
type Tag struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
}
