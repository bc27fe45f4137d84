package storage

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	assert.Equal(t, "1700000000000-abc-cat.png", ObjectName(now, "abc", "cat.png"))
	assert.Equal(t, "1700000000000-abc-my_cat.png", ObjectName(now, "abc", "my cat.png"))
	assert.Equal(t, "1700000000000-abc-evil.png", ObjectName(now, "abc", "../../evil.png"))
	assert.Equal(t, "1700000000000-abc-file", ObjectName(now, "abc", ""))

	id, err := newObjectID()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-z]{12}$`, id)
}

func TestLocalPutRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	l, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	l.now = func() time.Time { return time.UnixMilli(42) }
	l.newID = func() (string, error) { return "id1", nil }

	stored, err := l.Put(context.Background(), File{Name: "a.png", Body: bytes.NewReader([]byte("data"))})
	require.NoError(t, err)
	assert.Equal(t, "42-id1-a.png", stored.Key)
	assert.Equal(t, "/uploads/42-id1-a.png", stored.URL)

	data, err := os.ReadFile(filepath.Join(dir, stored.Key))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	require.NoError(t, l.Remove(context.Background(), stored.Key))
	assert.NoFileExists(t, filepath.Join(dir, stored.Key))
	require.NoError(t, l.Remove(context.Background(), stored.Key))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Put(ctx, File{Name: "b.png", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalSameNameSameMillisecond(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)
	l.now = func() time.Time { return time.UnixMilli(42) }

	first, err := l.Put(context.Background(), File{Name: "image.png", Body: bytes.NewReader([]byte("first"))})
	require.NoError(t, err)
	second, err := l.Put(context.Background(), File{Name: "image.png", Body: bytes.NewReader([]byte("second"))})
	require.NoError(t, err)
	require.NotEqual(t, first.Key, second.Key)

	require.NoError(t, l.Remove(context.Background(), second.Key))
	data, err := os.ReadFile(filepath.Join(dir, first.Key))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)
	l.now = func() time.Time { return time.UnixMilli(42) }
	l.newID = func() (string, error) { return "same", nil }

	first, err := l.Put(context.Background(), File{Name: "image.png", Body: bytes.NewReader([]byte("first"))})
	require.NoError(t, err)
	_, err = l.Put(context.Background(), File{Name: "image.png", Body: bytes.NewReader([]byte("second"))})
	assert.ErrorIs(t, err, fs.ErrExist)

	data, err := os.ReadFile(filepath.Join(dir, first.Key))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}
