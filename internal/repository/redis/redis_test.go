package redis

import (
	"context"
	"testing"
	"time"

	"BlackByte_Forum/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestNewClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(addr, "", 0)
	assert.Error(t, err)
}

func TestSessionRepository(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := &SessionRepository{RDB: rdb}
	ctx := context.Background()

	s := &model.Session{ID: "sid", UserID: "user_1", AuthType: model.AuthTypeLocal, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, s))
	assert.Greater(t, mr.TTL(sessionKey("sid")), 59*time.Minute)

	got, err := repo.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.UserID)
	assert.Equal(t, model.AuthTypeLocal, got.AuthType)

	mr.FastForward(2 * time.Hour)
	_, err = repo.Get(ctx, "sid")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	// 已过期的会话不写入，并返回错误
	err = repo.Save(ctx, &model.Session{ID: "old", UserID: "u", ExpiresAt: time.Now().Add(-time.Second)})
	assert.ErrorIs(t, err, model.ErrSessionExpired)
	assert.False(t, mr.Exists(sessionKey("old")))

	require.NoError(t, repo.Save(ctx, &model.Session{ID: "gone", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, repo.Delete(ctx, "gone"))
	_, err = repo.Get(ctx, "gone")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestEmailCodeFlow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := &EmailRepository{RDB: rdb, TTL: time.Minute}
	ctx := context.Background()
	const email = "a@example.com"

	assert.ErrorIs(t, repo.ConfirmCode(ctx, email), ErrCodeConfirmedFailed)

	require.NoError(t, repo.SaveCodePending(ctx, email, "123456"))
	_, err := repo.GetConfirmedCode(ctx, email)
	assert.ErrorIs(t, err, ErrEmailNotFound)

	require.NoError(t, repo.ConfirmCode(ctx, email))
	assert.False(t, mr.Exists(verifyKey(PendingSuffix, email)))

	code, err := repo.GetConfirmedCode(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	assert.ErrorIs(t, repo.ConsumeCode(ctx, email, "000000"), ErrEmailCodeMismatch)
	require.NoError(t, repo.ConsumeCode(ctx, email, "123456"))
	assert.ErrorIs(t, repo.ConsumeCode(ctx, email, "123456"), ErrEmailNotFound)
}

func TestEmailCodeExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := &EmailRepository{RDB: rdb}
	ctx := context.Background()
	const email = "b@example.com"

	require.NoError(t, repo.SaveCodePending(ctx, email, "654321"))
	require.NoError(t, repo.ConfirmCode(ctx, email))
	mr.FastForward(DefaultEmailCodeTTL + time.Second)

	assert.ErrorIs(t, repo.ConsumeCode(ctx, email, "654321"), ErrEmailNotFound)

	require.NoError(t, repo.SaveCodePending(ctx, email, "111111"))
	require.NoError(t, repo.DeleteCodePending(ctx, email))
	require.NoError(t, repo.DeleteCodePending(ctx, email))
	assert.False(t, mr.Exists(verifyKey(PendingSuffix, email)))
}

func TestDistLock(t *testing.T) {
	mr, rdb := newTestRedis(t)
	lock := &DistLock{RDB: rdb}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "reconcile", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Acquire(ctx, "reconcile", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// 非持有者释放无效
	require.NoError(t, lock.Release(ctx, "reconcile", "b"))
	assert.True(t, mr.Exists(lockKey("reconcile")))

	require.NoError(t, lock.Release(ctx, "reconcile", "a"))
	assert.False(t, mr.Exists(lockKey("reconcile")))

	ok, err = lock.Acquire(ctx, "reconcile", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
