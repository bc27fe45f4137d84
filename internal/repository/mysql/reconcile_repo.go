package mysql

import (
	"context"

	"BlackByte_Forum/internal/model"

	"gorm.io/gorm"
)

// CounterReconcileRepo 计数对账，只在显式修复时使用
type CounterReconcileRepo struct {
	DB *gorm.DB
}

// CounterRow 对账行：id 与当前存储的计数
type CounterRow struct {
	ID     string
	Stored int64
}

// ForumBatch 按 id 游标批量取论坛 post_count
func (r *CounterReconcileRepo) ForumBatch(ctx context.Context, lastID string, batchSize int) ([]CounterRow, string, error) {
	return r.batch(ctx, &model.Forum{}, "post_count", lastID, batchSize)
}

// PostBatch 按 id 游标批量取帖子 reply_count
func (r *CounterReconcileRepo) PostBatch(ctx context.Context, lastID string, batchSize int) ([]CounterRow, string, error) {
	return r.batch(ctx, &model.Post{}, "reply_count", lastID, batchSize)
}

func (r *CounterReconcileRepo) batch(ctx context.Context, m any, column, lastID string, batchSize int) ([]CounterRow, string, error) {
	var list []CounterRow
	if err := r.DB.WithContext(ctx).Model(m).
		Select("id, " + column + " AS stored").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// RealPostCount 论坛下真实帖子数
func (r *CounterReconcileRepo) RealPostCount(ctx context.Context, forumID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("forum_id = ?", forumID).
		Count(&n).Error
	return n, err
}

// RealReplyCount 帖子下真实回复数
func (r *CounterReconcileRepo) RealReplyCount(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Reply{}).
		Where("post_id = ?", postID).
		Count(&n).Error
	return n, err
}

func (r *CounterReconcileRepo) FixForumPostCount(ctx context.Context, forumID string, n int64) error {
	return r.DB.WithContext(ctx).Model(&model.Forum{}).Where("id = ?", forumID).
		UpdateColumn("post_count", n).Error
}

func (r *CounterReconcileRepo) FixPostReplyCount(ctx context.Context, postID string, n int64) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).Where("id = ?", postID).
		UpdateColumn("reply_count", n).Error
}
