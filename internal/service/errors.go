package service

import (
	"errors"

	"BlackByte_Forum/internal/pkg"

	"gorm.io/gorm"
)

const (
	DefaultPageSize  = 20
	DefaultReplyPage = 50
	MaxPageSize      = 100
)

// ClampPage limit 默认 def，限制在 [1,100]；offset 不小于 0
func ClampPage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// storeErr 记录不存在转 NotFound，其余存储错误统一为 Internal
func storeErr(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.NewNotFound(notFound)
	}
	return pkg.NewInternal("store failure", err)
}
