package service

import (
	"context"
	"errors"
	"time"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/repository/mysql"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionStore 会话持久化：数据库或 redis
type SessionStore interface {
	Save(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionService 签发、解析、销毁会话。cookie 内容是签名后的会话 ID
type SessionService struct {
	store  SessionStore
	users  *mysql.UserRepository
	signer *pkg.CookieSigner
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(store SessionStore, users *mysql.UserRepository, signer *pkg.CookieSigner, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{store: store, users: users, signer: signer, ttl: ttl, now: time.Now}
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

// Issue 为用户创建本地会话，返回 cookie 值
func (s *SessionService) Issue(ctx context.Context, user *model.User) (string, time.Time, error) {
	now := s.now()
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		AuthType:  model.AuthTypeLocal,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return "", time.Time{}, pkg.NewInternal("save session", err)
	}
	token, err := s.signer.Sign(sess.ID, now, sess.ExpiresAt)
	if err != nil {
		return "", time.Time{}, pkg.NewInternal("sign session", err)
	}
	return token, sess.ExpiresAt, nil
}

// Resolve 返回会话对应的用户；任何一步不满足都视为匿名（nil），不返回错误
func (s *SessionService) Resolve(ctx context.Context, token string) *model.User {
	if token == "" {
		return nil
	}
	sid, err := s.signer.Parse(token)
	if err != nil {
		return nil
	}
	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		if !errors.Is(err, model.ErrSessionNotFound) {
			zap.L().Warn("Session lookup failed", zap.Error(err))
		}
		return nil
	}
	if sess.UserID == "" || sess.AuthType != model.AuthTypeLocal || sess.Expired(s.now()) {
		return nil
	}
	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil
	}
	if user.Banned {
		return nil
	}
	return user
}

// Destroy 删除会话；无效 cookie 直接忽略
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	sid, err := s.signer.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, sid); err != nil {
		return pkg.NewInternal("delete session", err)
	}
	return nil
}
