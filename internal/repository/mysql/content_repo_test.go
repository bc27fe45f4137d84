package mysql

import (
	"context"
	"sync"
	"testing"

	"BlackByte_Forum/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostCreateIncrementsForumCount(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "user_1")
	f := seedForum(t, db, "general")
	posts := &PostRepository{DB: db}

	p := seedPost(t, posts, f.ID, u.ID, "hello", model.Attachment{
		FileName: "a.png", FileURL: "/uploads/a.png", FileType: "image/png", FileSize: 10, StorageKey: "a.png",
	})

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, int64(1), reload[model.Forum](t, db, f.ID).PostCount)
	assert.Equal(t, int64(1), countRows(t, db, &model.Attachment{}, "post_id = ?", p.ID))
	assert.Equal(t, int64(1), countRows(t, db, &model.ContentOutbox{}, "event_type = ?", model.EventPostCreated))

	detail, err := posts.FindDetail(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Author)
	require.NotNil(t, detail.Forum)
	assert.Equal(t, u.ID, detail.Author.ID)
	assert.Len(t, detail.Attachments, 1)
}

func TestPostCreateMissingForumRollsBack(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "user_1")
	posts := &PostRepository{DB: db}

	err := posts.Create(context.Background(), &model.Post{Title: "t", Content: "c", ForumID: "missing", AuthorID: u.ID}, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, countRows(t, db, &model.Post{}, "1 = 1"))
	assert.Zero(t, countRows(t, db, &model.ContentOutbox{}, "1 = 1"))
}

func TestPostDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "user_1")
	f := seedForum(t, db, "general")
	posts := &PostRepository{DB: db}
	replies := &ReplyRepository{DB: db}

	keep := seedPost(t, posts, f.ID, u.ID, "keep")
	p := seedPost(t, posts, f.ID, u.ID, "gone", model.Attachment{
		FileName: "a.png", FileURL: "/uploads/a.png", FileType: "image/png", FileSize: 10, StorageKey: "k1",
	})
	seedReply(t, replies, p.ID, u.ID, 3)
	seedReply(t, replies, keep.ID, u.ID, 1)

	removed, err := posts.Delete(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "k1", removed[0].StorageKey)

	assert.Zero(t, countRows(t, db, &model.Reply{}, "post_id = ?", p.ID))
	assert.Zero(t, countRows(t, db, &model.Attachment{}, "post_id = ?", p.ID))
	assert.Equal(t, int64(1), countRows(t, db, &model.Reply{}, "post_id = ?", keep.ID))
	assert.Equal(t, int64(1), reload[model.Forum](t, db, f.ID).PostCount)

	_, err = posts.Delete(context.Background(), p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, int64(1), reload[model.Forum](t, db, f.ID).PostCount)
}

func TestReplyCountersStayConsistent(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "user_1")
	f := seedForum(t, db, "general")
	posts := &PostRepository{DB: db}
	replies := &ReplyRepository{DB: db}
	p := seedPost(t, posts, f.ID, u.ID, "topic")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, replies.Create(context.Background(), &model.Reply{Content: "x", PostID: p.ID, AuthorID: u.ID}))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(10), reload[model.Post](t, db, p.ID).ReplyCount)

	list, err := replies.ListByPost(context.Background(), p.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, list, 10)

	require.NoError(t, replies.Delete(context.Background(), list[0].ID))
	assert.ErrorIs(t, replies.Delete(context.Background(), list[0].ID), gorm.ErrRecordNotFound)
	assert.Equal(t, int64(9), reload[model.Post](t, db, p.ID).ReplyCount)
}

func TestReplyParentMustBelongToPost(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "user_1")
	f := seedForum(t, db, "general")
	posts := &PostRepository{DB: db}
	replies := &ReplyRepository{DB: db}
	a := seedPost(t, posts, f.ID, u.ID, "a")
	b := seedPost(t, posts, f.ID, u.ID, "b")
	parent := seedReply(t, replies, a.ID, u.ID, 1)[0]

	err := replies.Create(context.Background(), &model.Reply{Content: "x", PostID: b.ID, AuthorID: u.ID, ParentID: &parent.ID})
	assert.ErrorIs(t, err, ErrParentNotInPost)
	assert.Zero(t, reload[model.Post](t, db, b.ID).ReplyCount)

	child := &model.Reply{Content: "y", PostID: a.ID, AuthorID: u.ID, ParentID: &parent.ID}
	require.NoError(t, replies.Create(context.Background(), child))
	assert.Equal(t, int64(2), reload[model.Post](t, db, a.ID).ReplyCount)

	err = replies.Create(context.Background(), &model.Reply{Content: "z", PostID: "missing", AuthorID: u.ID})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCounterNeverNegative(t *testing.T) {
	db := newTestDB(t)
	f := seedForum(t, db, "general")

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return adjustCounter(tx, &model.Forum{}, f.ID, "post_count", -1)
	}))
	assert.Zero(t, reload[model.Forum](t, db, f.ID).PostCount)
}

func TestForumDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "user_1")
	f := seedForum(t, db, "doomed")
	other := seedForum(t, db, "other")
	forums := &ForumRepository{DB: db}
	posts := &PostRepository{DB: db}
	replies := &ReplyRepository{DB: db}

	p := seedPost(t, posts, f.ID, u.ID, "p1", model.Attachment{
		FileName: "a.png", FileURL: "/u/a.png", FileType: "image/png", FileSize: 1, StorageKey: "a",
	})
	seedPost(t, posts, f.ID, u.ID, "p2")
	survivor := seedPost(t, posts, other.ID, u.ID, "p3")
	seedReply(t, replies, p.ID, u.ID, 2)

	removed, err := forums.Delete(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	assert.Zero(t, countRows(t, db, &model.Forum{}, "id = ?", f.ID))
	assert.Zero(t, countRows(t, db, &model.Post{}, "forum_id = ?", f.ID))
	assert.Zero(t, countRows(t, db, &model.Reply{}, "post_id = ?", p.ID))
	assert.Zero(t, countRows(t, db, &model.Attachment{}, "1 = 1"))
	assert.Equal(t, int64(1), countRows(t, db, &model.Post{}, "id = ?", survivor.ID))
	assert.Equal(t, int64(1), countRows(t, db, &model.ContentOutbox{}, "event_type = ?", model.EventForumDeleted))

	_, err = forums.Delete(context.Background(), f.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestForumViewsConcurrent(t *testing.T) {
	db := newTestDB(t)
	f := seedForum(t, db, "general")
	forums := &ForumRepository{DB: db}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, forums.IncrViewsBySlug(context.Background(), "general"))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(20), reload[model.Forum](t, db, f.ID).Views)

	require.NoError(t, forums.IncrViewsBySlug(context.Background(), "missing"))
}

func TestPostListAndSearch(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "user_1")
	f := seedForum(t, db, "general")
	posts := &PostRepository{DB: db}

	seedPost(t, posts, f.ID, u.ID, "Gopher tips")
	pinned := seedPost(t, posts, f.ID, u.ID, "Rules")
	seedPost(t, posts, f.ID, u.ID, "100% coverage")
	seedPost(t, posts, f.ID, u.ID, "Été à Paris")
	require.NoError(t, posts.UpdateFields(context.Background(), pinned.ID, map[string]any{"pinned": true}))

	list, err := posts.List(context.Background(), f.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, pinned.ID, list[0].ID)

	found, err := posts.Search(context.Background(), "  GOPHER ", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Gopher tips", found[0].Title)

	found, err = posts.Search(context.Background(), "%", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% coverage", found[0].Title)

	found, err = posts.Search(context.Background(), "été", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Été à Paris", found[0].Title)

	found, err = posts.Search(context.Background(), "À PARIS", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = posts.Search(context.Background(), "   ", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}
