package service

import (
	"context"

	"BlackByte_Forum/internal/repository/mysql"

	"go.uber.org/zap"
)

// CounterReconciler 用真实行数修正 post_count / reply_count，只由命令行显式触发
type CounterReconciler struct {
	repo      *mysql.CounterReconcileRepo
	batchSize int
}

type ReconcileReport struct {
	ForumsChecked int
	ForumsFixed   int
	PostsChecked  int
	PostsFixed    int
}

func NewCounterReconciler(repo *mysql.CounterReconcileRepo, batchSize int) *CounterReconciler {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &CounterReconciler{repo: repo, batchSize: batchSize}
}

type counterPass struct {
	batch func(ctx context.Context, lastID string, n int) ([]mysql.CounterRow, string, error)
	real  func(ctx context.Context, id string) (int64, error)
	fix   func(ctx context.Context, id string, n int64) error
	name  string
}

// Run 对账一遍全部论坛与帖子
func (r *CounterReconciler) Run(ctx context.Context) (ReconcileReport, error) {
	var rep ReconcileReport
	var err error

	rep.ForumsChecked, rep.ForumsFixed, err = r.pass(ctx, counterPass{
		batch: r.repo.ForumBatch,
		real:  r.repo.RealPostCount,
		fix:   r.repo.FixForumPostCount,
		name:  "forum.post_count",
	})
	if err != nil {
		return rep, err
	}

	rep.PostsChecked, rep.PostsFixed, err = r.pass(ctx, counterPass{
		batch: r.repo.PostBatch,
		real:  r.repo.RealReplyCount,
		fix:   r.repo.FixPostReplyCount,
		name:  "post.reply_count",
	})
	return rep, err
}

func (r *CounterReconciler) pass(ctx context.Context, p counterPass) (checked, fixed int, err error) {
	lastID := ""
	for {
		if err = ctx.Err(); err != nil {
			return checked, fixed, err
		}
		var rows []mysql.CounterRow
		rows, lastID, err = p.batch(ctx, lastID, r.batchSize)
		if err != nil {
			return checked, fixed, err
		}
		if len(rows) == 0 {
			return checked, fixed, nil
		}
		for _, row := range rows {
			checked++
			n, err := p.real(ctx, row.ID)
			if err != nil {
				return checked, fixed, err
			}
			if n == row.Stored {
				continue
			}
			if err := p.fix(ctx, row.ID, n); err != nil {
				return checked, fixed, err
			}
			fixed++
			zap.L().Info("Counter repaired",
				zap.String("counter", p.name),
				zap.String("id", row.ID),
				zap.Int64("stored", row.Stored),
				zap.Int64("real", n),
			)
		}
	}
}
