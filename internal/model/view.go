package model

import "time"

// AuthorSummary 列表与详情中附带的作者信息
type AuthorSummary struct {
	ID          string  `json:"id"`
	Username    *string `json:"username"`
	DisplayName string  `json:"displayName"`
	Avatar      string  `json:"avatar"`
	Role        string  `json:"role"`
}

type ForumSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type PostView struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	AuthorID   string         `json:"authorId"`
	ForumID    string         `json:"forumId"`
	Views      int64          `json:"views"`
	ReplyCount int64          `json:"replyCount"`
	Pinned     bool           `json:"pinned"`
	Locked     bool           `json:"locked"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Author     *AuthorSummary `json:"author"`
	Forum      *ForumSummary  `json:"forum"`
}

// PostDetail 帖子详情，附件列表始终输出
type PostDetail struct {
	PostView
	Attachments []Attachment `json:"attachments"`
}

type ReplyView struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	AuthorID  string         `json:"authorId"`
	PostID    string         `json:"postId"`
	ParentID  *string        `json:"parentId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Author    *AuthorSummary `json:"author"`
}

// UserProfile 当前登录用户信息
type UserProfile struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Username        *string `json:"username"`
	Role            string  `json:"role"`
	ProfileImageURL string  `json:"profileImageUrl"`
	AuthType        string  `json:"authType"`
	EmailVerified   bool    `json:"emailVerified"`
}

func NewAuthorSummary(u *User) *AuthorSummary {
	if u == nil {
		return nil
	}
	return &AuthorSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		Avatar:      u.Avatar,
		Role:        u.Role,
	}
}

func NewForumSummary(f *Forum) *ForumSummary {
	if f == nil {
		return nil
	}
	return &ForumSummary{ID: f.ID, Title: f.Title, Slug: f.Slug}
}

func NewPostView(p *Post) PostView {
	return PostView{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   p.AuthorID,
		ForumID:    p.ForumID,
		Views:      p.Views,
		ReplyCount: p.ReplyCount,
		Pinned:     p.Pinned,
		Locked:     p.Locked,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Author:     NewAuthorSummary(p.Author),
		Forum:      NewForumSummary(p.Forum),
	}
}

func NewPostDetail(p *Post) *PostDetail {
	atts := p.Attachments
	if atts == nil {
		atts = []Attachment{}
	}
	return &PostDetail{PostView: NewPostView(p), Attachments: atts}
}

func NewReplyView(r *Reply) ReplyView {
	return ReplyView{
		ID:        r.ID,
		Content:   r.Content,
		AuthorID:  r.AuthorID,
		PostID:    r.PostID,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Author:    NewAuthorSummary(r.Author),
	}
}

func NewUserProfile(u *User) UserProfile {
	return UserProfile{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Username:        u.Username,
		Role:            u.Role,
		ProfileImageURL: u.ProfileImageURL,
		AuthType:        u.AuthType,
		EmailVerified:   u.EmailVerified,
	}
}
