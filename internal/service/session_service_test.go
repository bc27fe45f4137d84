package service

import (
	"context"
	"testing"
	"time"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/repository/mysql"
	"BlackByte_Forum/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionResolve(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	store := &mysql.SessionRepository{DB: env.db}
	signer := pkg.NewCookieSigner("test-secret")
	sessions := NewSessionService(store, &mysql.UserRepository{DB: env.db}, signer, time.Hour)
	u := env.createUser(t, "alice@example.com", model.RoleMember)

	token, expiresAt, err := sessions.Issue(ctx, u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	got := sessions.Resolve(ctx, token)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	t.Run("empty or forged cookie is anonymous", func(t *testing.T) {
		assert.Nil(t, sessions.Resolve(ctx, ""))
		assert.Nil(t, sessions.Resolve(ctx, token+"x"))
		other := NewSessionService(store, &mysql.UserRepository{DB: env.db}, pkg.NewCookieSigner("other"), time.Hour)
		assert.Nil(t, other.Resolve(ctx, token))
	})

	t.Run("unknown session id is anonymous", func(t *testing.T) {
		forged, err := signer.Sign("no-such-session", time.Now(), time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Nil(t, sessions.Resolve(ctx, forged))
	})

	t.Run("non-local or empty user session is anonymous", func(t *testing.T) {
		for _, s := range []*model.Session{
			{ID: "fed", UserID: u.ID, AuthType: model.AuthTypeFederated, ExpiresAt: time.Now().Add(time.Hour)},
			{ID: "nouser", UserID: "", AuthType: model.AuthTypeLocal, ExpiresAt: time.Now().Add(time.Hour)},
			{ID: "ghost", UserID: "user_ghost", AuthType: model.AuthTypeLocal, ExpiresAt: time.Now().Add(time.Hour)},
		} {
			require.NoError(t, store.Save(ctx, s))
			tok, err := signer.Sign(s.ID, time.Now(), time.Now().Add(time.Hour))
			require.NoError(t, err)
			assert.Nil(t, sessions.Resolve(ctx, tok), s.ID)
		}
	})

	t.Run("expired session is anonymous", func(t *testing.T) {
		sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { sessions.now = time.Now }()
		assert.Nil(t, sessions.Resolve(ctx, token))
	})

	t.Run("banned user is anonymous", func(t *testing.T) {
		require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", u.ID).Update("banned", true).Error)
		defer env.db.Model(&model.User{}).Where("id = ?", u.ID).Update("banned", false)
		assert.Nil(t, sessions.Resolve(ctx, token))
	})

	require.NotNil(t, sessions.Resolve(ctx, token))
	require.NoError(t, sessions.Destroy(ctx, token))
	assert.Nil(t, sessions.Resolve(ctx, token))
	require.NoError(t, sessions.Destroy(ctx, "garbage"))
}

func TestIssueNeverSignsUnsavedSession(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	sessions := NewSessionService(&redis.SessionRepository{RDB: rdb}, &mysql.UserRepository{DB: env.db},
		pkg.NewCookieSigner("test-secret"), time.Hour)
	u := env.createUser(t, "alice@example.com", model.RoleMember)

	// 时钟落后于 TTL，写入时会话已过期
	sessions.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := sessions.Issue(ctx, u)
	requireKind(t, err, pkg.KindInternal)
	assert.ErrorIs(t, err, model.ErrSessionExpired)
	assert.Empty(t, token)
	assert.Empty(t, mr.Keys())
}
