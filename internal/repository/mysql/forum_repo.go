package mysql

import (
	"context"

	"BlackByte_Forum/internal/model"

	"gorm.io/gorm"
)

type ForumRepository struct {
	DB *gorm.DB
}

func (r *ForumRepository) Create(ctx context.Context, f *model.Forum) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

func (r *ForumRepository) FindByID(ctx context.Context, id string) (*model.Forum, error) {
	var forum model.Forum
	if err := r.DB.WithContext(ctx).First(&forum, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &forum, nil
}

func (r *ForumRepository) FindBySlug(ctx context.Context, slug string) (*model.Forum, error) {
	var forum model.Forum
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&forum).Error; err != nil {
		return nil, err
	}
	return &forum, nil
}

func (r *ForumRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.Forum{}).
		Where("slug = ?", slug).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// List 按标题排序
func (r *ForumRepository) List(ctx context.Context) ([]model.Forum, error) {
	var list []model.Forum
	err := r.DB.WithContext(ctx).Order("title ASC").Find(&list).Error
	return list, err
}

// IncrViewsBySlug 不关心 slug 是否存在
func (r *ForumRepository) IncrViewsBySlug(ctx context.Context, slug string) error {
	return incrViews(r.DB.WithContext(ctx), &model.Forum{}, "slug = ?", slug)
}

// Delete 级联删除论坛下的帖子、回复与附件，返回被删除的附件用于清理文件
func (r *ForumRepository) Delete(ctx context.Context, id string) ([]model.Attachment, error) {
	var removed []model.Attachment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []string
		if err := tx.Model(&model.Post{}).
			Where("forum_id = ?", id).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Find(&removed).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Reply{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Attachment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("forum_id = ?", id).Delete(&model.Post{}).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&model.Forum{})
		if res.Error != nil {
			return res.Error
		}
		// 已被并发删除，整体回滚
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return insertOutbox(tx, model.EventForumDeleted, id, map[string]any{
			"posts": len(postIDs),
		})
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
