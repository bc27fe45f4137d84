package service

import (
	"context"
	"time"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/repository/mysql"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Sender func(ctx context.Context, ob *model.ContentOutbox) error

// OutboxRelayer 从 content_outbox 读取待投递事件交给 sender
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(repo *mysql.OutboxRepository, sender Sender, batchSize int, interval time.Duration) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{
		repo:      repo,
		batchSize: batchSize,
		interval:  interval,
		sender:    sender,
	}
}

// Run 阻塞直到 ctx 取消
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce 按 id 顺序投递一批；失败的标记为 failed，不在这里重试
func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	rows, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		zap.L().Error("Outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			zap.L().Warn("Outbox send failed",
				zap.Uint64("id", ob.ID),
				zap.String("event", ob.EventType),
				zap.Error(err),
			)
			if err = r.repo.MarkFailed(ctx, ob.ID); err != nil {
				zap.L().Error("Outbox mark failed", zap.Uint64("id", ob.ID), zap.Error(err))
			}
			continue
		}
		if err = r.repo.MarkSent(ctx, ob.ID); err != nil {
			zap.L().Error("Outbox mark sent failed", zap.Uint64("id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// LogSender 未配置 kafka 时使用
func LogSender(_ context.Context, ob *model.ContentOutbox) error {
	zap.L().Info("Outbox event",
		zap.String("event", ob.EventType),
		zap.String("aggregate_id", ob.AggregateID),
		zap.String("payload", ob.Payload),
	)
	return nil
}

// KafkaSender 以聚合 id 作 key，同一聚合的事件进入同一分区
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.ContentOutbox) error {
		return p.Send(ctx, ob.AggregateID, []byte(ob.Payload),
			kafka.Header{Key: "event_type", Value: []byte(ob.EventType)},
		)
	}
}
