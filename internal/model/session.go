package model

import (
	"errors"
	"time"
)

// ErrSessionNotFound 会话存储中没有该 ID
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired 写入时会话已过期
var ErrSessionExpired = errors.New("session already expired")

// Session 服务端会话，cookie 中只携带签名后的会话 ID
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	UserID    string    `gorm:"size:64;index" json:"userId"`
	AuthType  string    `gorm:"size:16;not null" json:"authType"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
