package service

import (
	"context"
	"strings"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/policy"
	"BlackByte_Forum/internal/repository/mysql"
	"BlackByte_Forum/internal/storage"
)

type PostService struct {
	repo  *mysql.PostRepository
	files storage.FileStorage
}

func NewPostService(repo *mysql.PostRepository, files storage.FileStorage) *PostService {
	return &PostService{repo: repo, files: files}
}

type CreatePostInput struct {
	Title   string
	Content string
	ForumID string
}

// UpdatePostInput nil 字段保持不变
type UpdatePostInput struct {
	Title   *string
	Content *string
}

type ModeratePostInput struct {
	Pinned *bool
	Locked *bool
}

func toPostViews(list []model.Post) []model.PostView {
	views := make([]model.PostView, 0, len(list))
	for i := range list {
		views = append(views, model.NewPostView(&list[i]))
	}
	return views
}

func (s *PostService) List(ctx context.Context, forumID string, limit, offset int) ([]model.PostView, error) {
	list, err := s.repo.List(ctx, forumID, offset, limit)
	if err != nil {
		return nil, pkg.NewInternal("list posts", err)
	}
	return toPostViews(list), nil
}

// Search 空白查询直接返回空列表
func (s *PostService) Search(ctx context.Context, query string, limit, offset int) ([]model.PostView, error) {
	if strings.TrimSpace(query) == "" {
		return []model.PostView{}, nil
	}
	list, err := s.repo.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, pkg.NewInternal("search posts", err)
	}
	return toPostViews(list), nil
}

func (s *PostService) Detail(ctx context.Context, id string) (*model.PostDetail, error) {
	post, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, storeErr(err, "post not found")
	}
	return model.NewPostDetail(post), nil
}

// View 先累加浏览数再查询
func (s *PostService) View(ctx context.Context, id string) (*model.PostDetail, error) {
	if err := s.repo.IncrViews(ctx, id); err != nil {
		return nil, pkg.NewInternal("increment post views", err)
	}
	return s.Detail(ctx, id)
}

// Create 文件已在边界完成大小与类型校验；先落文件再写库，写库失败时清理已存文件
func (s *PostService) Create(ctx context.Context, actor *model.User, in CreatePostInput, uploads []storage.File) (*model.PostDetail, error) {
	if err := policy.Decide(actor, policy.ActionCreatePost, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "required"
	}
	if len(fields) > 0 {
		return nil, pkg.NewValidation("invalid post data", fields)
	}

	attachments := make([]model.Attachment, 0, len(uploads))
	for _, f := range uploads {
		stored, err := s.files.Put(ctx, f)
		if err != nil {
			removeFiles(ctx, s.files, attachments)
			return nil, pkg.NewInternal("store attachment", err)
		}
		attachments = append(attachments, model.Attachment{
			FileName:   f.Name,
			FileURL:    stored.URL,
			FileType:   f.ContentType,
			FileSize:   f.Size,
			StorageKey: stored.Key,
		})
	}

	post := &model.Post{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		AuthorID: actor.ID,
		ForumID:  in.ForumID,
	}
	if err := s.repo.Create(ctx, post, attachments); err != nil {
		removeFiles(ctx, s.files, attachments)
		return nil, storeErr(err, "forum not found")
	}
	return s.Detail(ctx, post.ID)
}

// authorize 先确认帖子存在（404），再按作者或管理角色判定（403）
func (s *PostService) authorize(ctx context.Context, actor *model.User, action policy.Action, id string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "post not found")
	}
	if err := policy.Decide(actor, action, policy.Resource{OwnerID: post.AuthorID}).Err(); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, actor *model.User, id string, in UpdatePostInput) (*model.PostDetail, error) {
	post, err := s.authorize(ctx, actor, policy.ActionEditPost, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, pkg.NewValidation("invalid post data", map[string]string{"title": "required"})
		}
		fields["title"] = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, pkg.NewValidation("invalid post data", map[string]string{"content": "required"})
		}
		fields["content"] = *in.Content
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, post.ID, fields); err != nil {
			return nil, pkg.NewInternal("update post", err)
		}
	}
	return s.Detail(ctx, post.ID)
}

// Moderate 置顶/锁定只能由版主或管理员修改
func (s *PostService) Moderate(ctx context.Context, actor *model.User, id string, in ModeratePostInput) (*model.PostDetail, error) {
	post, err := s.authorize(ctx, actor, policy.ActionModeratePost, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Pinned != nil {
		fields["pinned"] = *in.Pinned
	}
	if in.Locked != nil {
		fields["locked"] = *in.Locked
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, post.ID, fields); err != nil {
			return nil, pkg.NewInternal("moderate post", err)
		}
	}
	return s.Detail(ctx, post.ID)
}

// Delete 帖子、回复、附件与论坛计数在同一事务内完成
func (s *PostService) Delete(ctx context.Context, actor *model.User, id string) error {
	post, err := s.authorize(ctx, actor, policy.ActionDeletePost, id)
	if err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, post.ID)
	if err != nil {
		return storeErr(err, "post not found")
	}
	removeFiles(ctx, s.files, removed)
	return nil
}
