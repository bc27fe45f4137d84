package model

import "time"

const (
	EventPostCreated  = "post.created"
	EventPostDeleted  = "post.deleted"
	EventReplyCreated = "reply.created"
	EventReplyDeleted = "reply.deleted"
	EventForumDeleted = "forum.deleted"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// ContentOutbox 内容变更事件表，与内容写入同一事务
type ContentOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	EventType   string `gorm:"size:32;not null"`
	AggregateID string `gorm:"size:36;not null;index"`
	Payload     string `gorm:"type:text;not null"`
	Status      int8   `gorm:"not null;default:0;index"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ContentOutbox) TableName() string { return "content_outbox" }
