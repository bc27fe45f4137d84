package mysql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"BlackByte_Forum/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

// Create 写帖子和附件并把论坛 post_count +1；论坛不存在返回 gorm.ErrRecordNotFound
func (r *PostRepository) Create(ctx context.Context, post *model.Post, attachments []model.Attachment) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var forum model.Forum
		if err := tx.Select("id").First(&forum, "id = ?", post.ForumID).Error; err != nil {
			return err
		}

		if err := tx.Omit("Author", "Forum", "Attachments").Create(post).Error; err != nil {
			return err
		}

		for i := range attachments {
			attachments[i].PostID = post.ID
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}
		post.Attachments = attachments

		if err := adjustCounter(tx, &model.Forum{}, post.ForumID, "post_count", +1); err != nil {
			return err
		}

		return insertOutbox(tx, model.EventPostCreated, post.ID, map[string]any{
			"forum_id":  post.ForumID,
			"author_id": post.AuthorID,
		})
	})
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.DB.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// FindDetail 帖子及作者、论坛、附件
func (r *PostRepository) FindDetail(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Forum").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List 置顶优先，其次按时间倒序；forumID 为空则不过滤
func (r *PostRepository) List(ctx context.Context, forumID string, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.WithContext(ctx).Preload("Author").Preload("Forum")
	if forumID != "" {
		q = q.Where("forum_id = ?", forumID)
	}
	err := q.Order("pinned DESC").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search 标题或正文包含 query（不区分大小写），按时间倒序；空查询返回空结果
func (r *PostRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Post{}, nil
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	lower := lowerFunc(r.DB)

	var list []model.Post
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Forum").
		Where(fmt.Sprintf("%[1]s(title) LIKE ? ESCAPE '!' OR %[1]s(content) LIKE ? ESCAPE '!'", lower), pattern, pattern).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// UpdateFields 调用方需先确认帖子存在
func (r *PostRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *PostRepository) IncrViews(ctx context.Context, id string) error {
	return incrViews(r.DB.WithContext(ctx), &model.Post{}, "id = ?", id)
}

// Delete 删除帖子及其回复、附件，论坛 post_count -1（保底 0），返回被删附件
func (r *PostRepository) Delete(ctx context.Context, id string) ([]model.Attachment, error) {
	var removed []model.Attachment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id", "forum_id", "author_id").First(&post, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		// 并发删除时只有一个事务能真正删掉，另一个回滚，避免重复扣减
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := adjustCounter(tx, &model.Forum{}, post.ForumID, "post_count", -1); err != nil {
			return err
		}

		return insertOutbox(tx, model.EventPostDeleted, id, map[string]any{
			"forum_id":  post.ForumID,
			"author_id": post.AuthorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
