package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Forum struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Slug        string    `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	Category    string    `gorm:"size:64;not null;default:'general'" json:"category"`
	Icon        string    `gorm:"size:64" json:"icon"`
	Color       string    `gorm:"size:16;default:'#3b82f6'" json:"color"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	PostCount   int64     `gorm:"not null;default:0" json:"postCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (f *Forum) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
