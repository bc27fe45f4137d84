package mysql

import (
	"context"
	"testing"

	"BlackByte_Forum/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := &UserRepository{DB: db}
	ctx := context.Background()

	u := seedUser(t, db, "user_1")

	exists, err := repo.ExistsByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	dup := &model.User{ID: "user_2", Email: u.Email, AuthType: model.AuthTypeLocal, Role: model.RoleMember}
	assert.ErrorIs(t, repo.Create(ctx, dup), gorm.ErrDuplicatedKey)

	require.NoError(t, repo.UpdateRole(ctx, u.ID, model.RoleModerator))
	require.NoError(t, repo.SetBanned(ctx, u.ID, true))
	require.NoError(t, repo.MarkEmailVerified(ctx, u.ID))

	got, err := repo.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, got.Role)
	assert.True(t, got.Banned)
	assert.True(t, got.EmailVerified)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
