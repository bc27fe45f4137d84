package mysql

import (
	"context"
	"errors"
	"time"

	"BlackByte_Forum/internal/model"

	"gorm.io/gorm"
)

// ErrParentNotInPost parentId 指向的回复不存在或不属于同一帖子
var ErrParentNotInPost = errors.New("parent reply not in post")

type ReplyRepository struct {
	DB *gorm.DB
}

// Create 写回复并把帖子 reply_count +1；帖子不存在返回 gorm.ErrRecordNotFound
func (r *ReplyRepository) Create(ctx context.Context, reply *model.Reply) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id").First(&post, "id = ?", reply.PostID).Error; err != nil {
			return err
		}

		if reply.ParentID != nil {
			var n int64
			if err := tx.Model(&model.Reply{}).
				Where("id = ? AND post_id = ?", *reply.ParentID, reply.PostID).
				Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrParentNotInPost
			}
		}

		if err := tx.Omit("Author", "Post").Create(reply).Error; err != nil {
			return err
		}

		if err := adjustCounter(tx, &model.Post{}, reply.PostID, "reply_count", +1); err != nil {
			return err
		}

		return insertOutbox(tx, model.EventReplyCreated, reply.ID, map[string]any{
			"post_id":   reply.PostID,
			"author_id": reply.AuthorID,
		})
	})
}

func (r *ReplyRepository) FindByID(ctx context.Context, id string) (*model.Reply, error) {
	var reply model.Reply
	if err := r.DB.WithContext(ctx).Preload("Author").First(&reply, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListByPost 按时间正序
func (r *ReplyRepository) ListByPost(ctx context.Context, postID string, offset, limit int) ([]model.Reply, error) {
	var list []model.Reply
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *ReplyRepository) UpdateContent(ctx context.Context, id, content string) error {
	return r.DB.WithContext(ctx).Model(&model.Reply{}).
		Where("id = ?", id).
		Updates(map[string]any{"content": content, "updated_at": time.Now()}).Error
}

// Delete 删除回复，帖子 reply_count -1（保底 0）
func (r *ReplyRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply model.Reply
		if err := tx.Select("id", "post_id", "author_id").First(&reply, "id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Reply{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := adjustCounter(tx, &model.Post{}, reply.PostID, "reply_count", -1); err != nil {
			return err
		}

		return insertOutbox(tx, model.EventReplyDeleted, id, map[string]any{
			"post_id":   reply.PostID,
			"author_id": reply.AuthorID,
		})
	})
}
