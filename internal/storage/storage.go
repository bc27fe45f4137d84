// Package storage 上传图片的存储，本地目录或 MinIO 桶
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// File 待保存的文件
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Stored 保存结果，Key 用于之后删除
type Stored struct {
	Key string
	URL string
}

type FileStorage interface {
	Put(ctx context.Context, f File) (Stored, error)
	Remove(ctx context.Context, key string) error
}

const (
	objectIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	objectIDLength   = 12
)

var nameCleaner = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// newObjectID 同一毫秒内同名文件也不会共用 key
func newObjectID() (string, error) {
	return gonanoid.Generate(objectIDAlphabet, objectIDLength)
}

// ObjectName 命名规则：<unixMillis>-<id>-<base>
func ObjectName(now time.Time, id, name string) string {
	base := nameCleaner.Replace(filepath.Base(name))
	if base == "." || base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), id, base)
}
