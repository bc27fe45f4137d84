package mysql

import (
	"context"
	"time"

	"BlackByte_Forum/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// List 全部用户，最新注册在前
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	var list []model.User
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// UpdateFields 按 id 更新指定字段，调用方需先确认用户存在
func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) error {
	return r.UpdateFields(ctx, id, map[string]any{"role": role})
}

func (r *UserRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	return r.UpdateFields(ctx, id, map[string]any{"banned": banned})
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.UpdateFields(ctx, id, map[string]any{"email_verified": true})
}
