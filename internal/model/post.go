package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   string    `gorm:"size:64;not null;index" json:"authorId"`
	ForumID    string    `gorm:"size:36;not null;index:idx_forum_pinned_time,priority:1" json:"forumId"`
	Views      int64     `gorm:"not null;default:0" json:"views"`
	ReplyCount int64     `gorm:"not null;default:0" json:"replyCount"`
	Pinned     bool      `gorm:"not null;default:false;index:idx_forum_pinned_time,priority:2" json:"pinned"`
	Locked     bool      `gorm:"not null;default:false" json:"locked"`
	CreatedAt  time.Time `gorm:"index;index:idx_forum_pinned_time,priority:3" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Author      *User        `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Forum       *Forum       `gorm:"foreignKey:ForumID;constraint:OnDelete:CASCADE" json:"-"`
	Attachments []Attachment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Attachment 帖子图片附件，随帖子删除
type Attachment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PostID     string    `gorm:"size:36;not null;index" json:"postId"`
	FileName   string    `gorm:"size:255;not null" json:"fileName"`
	FileURL    string    `gorm:"size:512;not null" json:"fileUrl"`
	FileType   string    `gorm:"size:100;not null" json:"fileType"`
	FileSize   int64     `gorm:"not null" json:"fileSize"`
	StorageKey string    `gorm:"size:512" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a *Attachment) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
