package service

import (
	"context"
	"errors"
	"strings"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/policy"
	"BlackByte_Forum/internal/repository/mysql"
)

type ReplyService struct {
	repo *mysql.ReplyRepository
}

func NewReplyService(repo *mysql.ReplyRepository) *ReplyService {
	return &ReplyService{repo: repo}
}

type CreateReplyInput struct {
	Content  string
	ParentID *string
}

// List 按时间正序；帖子不存在时返回空列表
func (s *ReplyService) List(ctx context.Context, postID string, limit, offset int) ([]model.ReplyView, error) {
	list, err := s.repo.ListByPost(ctx, postID, offset, limit)
	if err != nil {
		return nil, pkg.NewInternal("list replies", err)
	}
	views := make([]model.ReplyView, 0, len(list))
	for i := range list {
		views = append(views, model.NewReplyView(&list[i]))
	}
	return views, nil
}

func (s *ReplyService) get(ctx context.Context, id string) (*model.ReplyView, error) {
	reply, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "reply not found")
	}
	view := model.NewReplyView(reply)
	return &view, nil
}

// Create 回复与帖子 reply_count 在同一事务内；parentId 只允许指向同帖回复
func (s *ReplyService) Create(ctx context.Context, actor *model.User, postID string, in CreateReplyInput) (*model.ReplyView, error) {
	if err := policy.Decide(actor, policy.ActionCreateReply, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, pkg.NewValidation("invalid reply data", map[string]string{"content": "required"})
	}

	parentID := in.ParentID
	if parentID != nil && strings.TrimSpace(*parentID) == "" {
		parentID = nil
	}
	reply := &model.Reply{
		Content:  in.Content,
		AuthorID: actor.ID,
		PostID:   postID,
		ParentID: parentID,
	}
	if err := s.repo.Create(ctx, reply); err != nil {
		if errors.Is(err, mysql.ErrParentNotInPost) {
			return nil, pkg.NewValidation("invalid reply data", map[string]string{"parentId": "parent"})
		}
		return nil, storeErr(err, "post not found")
	}
	return s.get(ctx, reply.ID)
}

// authorize 先确认回复存在（404），再按作者或管理角色判定（403）
func (s *ReplyService) authorize(ctx context.Context, actor *model.User, action policy.Action, id string) (*model.Reply, error) {
	reply, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "reply not found")
	}
	if err := policy.Decide(actor, action, policy.Resource{OwnerID: reply.AuthorID}).Err(); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *ReplyService) Update(ctx context.Context, actor *model.User, id, content string) (*model.ReplyView, error) {
	reply, err := s.authorize(ctx, actor, policy.ActionEditReply, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, pkg.NewValidation("invalid reply data", map[string]string{"content": "required"})
	}
	if err := s.repo.UpdateContent(ctx, reply.ID, content); err != nil {
		return nil, pkg.NewInternal("update reply", err)
	}
	return s.get(ctx, reply.ID)
}

func (s *ReplyService) Delete(ctx context.Context, actor *model.User, id string) error {
	reply, err := s.authorize(ctx, actor, policy.ActionDeleteReply, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reply.ID); err != nil {
		return storeErr(err, "reply not found")
	}
	return nil
}
