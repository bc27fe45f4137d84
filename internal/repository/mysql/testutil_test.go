package mysql

import (
	"context"
	"fmt"
	"testing"

	"BlackByte_Forum/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	pw := "hash"
	u := &model.User{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: "Test",
		LastName:  id,
		Password:  &pw,
		AuthType:  model.AuthTypeLocal,
		Role:      model.RoleMember,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedForum(t *testing.T, db *gorm.DB, slug string) *model.Forum {
	t.Helper()
	f := &model.Forum{Title: "Forum " + slug, Description: "desc", Slug: slug}
	require.NoError(t, db.Create(f).Error)
	return f
}

func seedPost(t *testing.T, repo *PostRepository, forumID, authorID, title string, atts ...model.Attachment) *model.Post {
	t.Helper()
	p := &model.Post{Title: title, Content: "content of " + title, ForumID: forumID, AuthorID: authorID}
	require.NoError(t, repo.Create(context.Background(), p, atts))
	return p
}

func seedReply(t *testing.T, repo *ReplyRepository, postID, authorID string, n int) []*model.Reply {
	t.Helper()
	var out []*model.Reply
	for i := 0; i < n; i++ {
		r := &model.Reply{Content: fmt.Sprintf("reply %d", i), PostID: postID, AuthorID: authorID}
		require.NoError(t, repo.Create(context.Background(), r))
		out = append(out, r)
	}
	return out
}

func reload[T any](t *testing.T, db *gorm.DB, id string) *T {
	t.Helper()
	var v T
	require.NoError(t, db.First(&v, "id = ?", id).Error)
	return &v
}

func countRows(t *testing.T, db *gorm.DB, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where(where, args...).Count(&n).Error)
	return n
}
