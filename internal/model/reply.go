package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reply struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	AuthorID string  `gorm:"size:64;not null;index" json:"authorId"`
	PostID   string  `gorm:"size:36;not null;index:idx_post_time,priority:1" json:"postId"`
	ParentID *string `gorm:"size:36" json:"parentId"` // 仅作回指，不保证成树
	// 回复按时间正序展示
	CreatedAt time.Time `gorm:"index:idx_post_time,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Post   *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Reply) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
