package mysql

import (
	"context"
	"errors"
	"time"

	"BlackByte_Forum/internal/model"

	"gorm.io/gorm"
)

// SessionRepository 关系库中的会话存储
type SessionRepository struct {
	DB *gorm.DB
}

func (r *SessionRepository) Save(ctx context.Context, s *model.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete 幂等
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error
}

// DeleteExpired 清理过期会话
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
