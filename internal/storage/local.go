package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local 文件落在本地目录，由 router 以静态目录对外提供
type Local struct {
	Dir        string
	PublicPath string
	now        func() time.Time
	newID      func() (string, error)
}

func NewLocal(dir, publicPath string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir, PublicPath: strings.TrimRight(publicPath, "/"), now: time.Now, newID: newObjectID}, nil
}

func (l *Local) Put(ctx context.Context, f File) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	id, err := l.newID()
	if err != nil {
		return Stored{}, err
	}
	key := ObjectName(l.now(), id, f.Name)
	path := filepath.Join(l.Dir, key)

	// O_EXCL：已有文件绝不覆盖
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Stored{}, err
	}
	if _, err := io.Copy(out, f.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return Stored{}, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return Stored{}, err
	}
	return Stored{Key: key, URL: l.PublicPath + "/" + key}, nil
}

// Remove 文件已不存在视为成功
func (l *Local) Remove(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.Dir, filepath.Base(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
