package auth

import (
	"time"

	"github.com/google/uuid"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// refreshTokenの行ID・jti用（v4）
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// 共有リンク用（v7、時刻順）
type UUIDv7Generator struct{}

func (UUIDv7Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
