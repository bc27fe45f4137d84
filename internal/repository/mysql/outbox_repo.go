package mysql

import (
	"context"
	"encoding/json"
	"time"

	"BlackByte_Forum/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// insertOutbox 与内容变更写在同一事务中
func insertOutbox(tx *gorm.DB, event, aggregateID string, fields map[string]any) error {
	body := map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"event":      event,
		"id":         aggregateID,
	}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tx.Create(&model.ContentOutbox{
		EventType:   event,
		AggregateID: aggregateID,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}

// ListPending 按 id 顺序取待投递事件
func (r *OutboxRepository) ListPending(ctx context.Context, batchSize int) ([]model.ContentOutbox, error) {
	var list []model.ContentOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkFailed 投递失败，留给人工处理
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ContentOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ContentOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
