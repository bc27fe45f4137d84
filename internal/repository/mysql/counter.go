package mysql

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// clampAdd 计数器增减并保底为 0，基于事务内已提交的当前值计算
func clampAdd(column string, delta int64) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" + ? > 0 THEN "+column+" + ? ELSE 0 END", delta, delta)
}

// adjustCounter 在给定事务内调整单个计数列，同时刷新 updated_at
func adjustCounter(tx *gorm.DB, m any, id, column string, delta int64) error {
	return tx.Model(m).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			column:       clampAdd(column, delta),
			"updated_at": time.Now(),
		}).Error
}

// incrViews 浏览数 +1，单条 UPDATE 保证并发下不丢失
func incrViews(db *gorm.DB, m any, where string, arg any) error {
	return db.Model(m).Where(where, arg).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}
