package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/policy"
	"BlackByte_Forum/internal/repository/mysql"
	"BlackByte_Forum/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type ForumService struct {
	repo  *mysql.ForumRepository
	files storage.FileStorage
}

func NewForumService(repo *mysql.ForumRepository, files storage.FileStorage) *ForumService {
	return &ForumService{repo: repo, files: files}
}

type CreateForumInput struct {
	Title       string
	Description string
	Slug        string
	Category    string
	Icon        string
	Color       string
}

func (s *ForumService) List(ctx context.Context) ([]model.Forum, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkg.NewInternal("list forums", err)
	}
	return list, nil
}

// View 先累加浏览数再查询，slug 不存在时计数不生效但仍返回 NotFound
func (s *ForumService) View(ctx context.Context, slug string) (*model.Forum, error) {
	if err := s.repo.IncrViewsBySlug(ctx, slug); err != nil {
		return nil, pkg.NewInternal("increment forum views", err)
	}
	forum, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "forum not found")
	}
	return forum, nil
}

func (s *ForumService) Create(ctx context.Context, actor *model.User, in CreateForumInput) (*model.Forum, error) {
	if err := policy.Decide(actor, policy.ActionCreateForum, policy.Resource{}).Err(); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(in.Description) == "" {
		fields["description"] = "required"
	}
	slug := strings.TrimSpace(in.Slug)
	if !slugPattern.MatchString(slug) {
		fields["slug"] = "slug"
	}
	if len(fields) > 0 {
		return nil, pkg.NewValidation("invalid forum data", fields)
	}
	exists, err := s.repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, pkg.NewInternal("check slug", err)
	}
	if exists {
		return nil, pkg.NewConflict("slug already in use")
	}

	forum := &model.Forum{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Slug:        slug,
		Category:    in.Category,
		Icon:        in.Icon,
		Color:       in.Color,
	}
	if forum.Category == "" {
		forum.Category = "general"
	}
	if forum.Color == "" {
		forum.Color = "#3b82f6"
	}
	if err := s.repo.Create(ctx, forum); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkg.NewConflict("slug already in use")
		}
		return nil, pkg.NewInternal("create forum", err)
	}
	return forum, nil
}

// Delete 仅管理员；帖子、回复、附件在同一事务内删除，文件在提交后尽力清理
func (s *ForumService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := policy.Decide(actor, policy.ActionDeleteForum, policy.Resource{}).Err(); err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeErr(err, "forum not found")
	}
	removeFiles(ctx, s.files, removed)
	return nil
}

// removeFiles 删除失败只记日志，数据库已提交
func removeFiles(ctx context.Context, files storage.FileStorage, atts []model.Attachment) {
	if files == nil {
		return
	}
	for _, a := range atts {
		if a.StorageKey == "" {
			continue
		}
		if err := files.Remove(ctx, a.StorageKey); err != nil {
			zap.L().Warn("Failed to remove attachment file",
				zap.String("attachment_id", a.ID),
				zap.String("key", a.StorageKey),
				zap.Error(err),
			)
		}
	}
}
