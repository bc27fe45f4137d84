package service

import (
	"bytes"
	"context"
	"testing"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/repository/mysql"
	"BlackByte_Forum/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	db      *gorm.DB
	files   *storage.Local
	users   *UserService
	forums  *ForumService
	posts   *PostService
	replies *ReplyService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := mysql.Open(mysql.DriverSQLite, ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, mysql.AutoMigrate(db))

	files, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	return &testEnv{
		db:      db,
		files:   files,
		users:   NewUserService(&mysql.UserRepository{DB: db}),
		forums:  NewForumService(&mysql.ForumRepository{DB: db}, files),
		posts:   NewPostService(&mysql.PostRepository{DB: db}, files),
		replies: NewReplyService(&mysql.ReplyRepository{DB: db}),
	}
}

// createUser 注册后按需调整角色
func (e *testEnv) createUser(t *testing.T, email, role string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		Email: email, Password: "password123", FirstName: "Test", LastName: "User",
	})
	require.NoError(t, err)
	if role != model.RoleMember {
		require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", u.ID).Update("role", role).Error)
		u.Role = role
	}
	return u
}

func (e *testEnv) createForum(t *testing.T, slug string) *model.Forum {
	t.Helper()
	f := &model.Forum{Title: slug, Description: "desc", Slug: slug}
	require.NoError(t, e.db.Create(f).Error)
	return f
}

func (e *testEnv) reloadForum(t *testing.T, id string) *model.Forum {
	t.Helper()
	var f model.Forum
	require.NoError(t, e.db.First(&f, "id = ?", id).Error)
	return &f
}

func (e *testEnv) reloadPost(t *testing.T, id string) *model.Post {
	t.Helper()
	var p model.Post
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return &p
}

func pngFile(name string) storage.File {
	return storage.File{
		Name:        name,
		ContentType: "image/png",
		Size:        int64(len(pngMagic)),
		Body:        bytes.NewReader(pngMagic),
	}
}

func requireKind(t *testing.T, err error, kind pkg.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, pkg.KindOf(err), "unexpected error: %v", err)
}
