package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/policy"
	"BlackByte_Forum/internal/repository/mysql"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const userIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

type UserService struct {
	repo *mysql.UserRepository
	now  func() time.Time
}

func NewUserService(repo *mysql.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// NewUserID user_<毫秒时间戳>_<9位随机串>
func NewUserID(now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(userIDAlphabet, 9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), suffix), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register 本地注册，角色固定为 member
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	taken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, pkg.NewInternal("check email", err)
	}
	if err := policy.Decide(nil, policy.ActionRegister, policy.Resource{EmailTaken: taken}).Err(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, pkg.NewInternal("hash password", err)
	}
	id, err := NewUserID(s.now())
	if err != nil {
		return nil, pkg.NewInternal("generate user id", err)
	}

	user := &model.User{
		ID:        id,
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  &hash,
		AuthType:  model.AuthTypeLocal,
		Role:      model.RoleMember,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkg.NewConflict("email already registered")
		}
		return nil, pkg.NewInternal("create user", err)
	}
	return user, nil
}

// Login 本地邮箱密码登录
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.NewInternal("find user", err)
	}

	facts := &policy.LoginFacts{Found: user != nil}
	if user != nil {
		facts.Local = user.AuthType == model.AuthTypeLocal && user.Password != nil
		facts.Banned = user.Banned
		if facts.Local {
			facts.PasswordMatches = bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)) == nil
		}
	}
	if err := policy.Decide(nil, policy.ActionLogin, policy.Resource{Login: facts}).Err(); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, actor *model.User, limit, offset int) ([]model.User, error) {
	if err := policy.Decide(actor, policy.ActionListUsers, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, pkg.NewInternal("list users", err)
	}
	return users, nil
}

func (s *UserService) ChangeRole(ctx context.Context, actor *model.User, targetID, role string) (*model.User, error) {
	if err := policy.Decide(actor, policy.ActionChangeRole, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	if !model.ValidRole(role) {
		return nil, pkg.NewValidation("invalid role", map[string]string{"role": "oneof"})
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, target.ID, role); err != nil {
		return nil, pkg.NewInternal("update role", err)
	}
	target.Role = role
	zap.L().Info("User role changed",
		zap.String("actor_id", actor.ID),
		zap.String("user_id", target.ID),
		zap.String("role", role),
	)
	return target, nil
}

// SetBanned 封禁后该用户已有会话在下一次请求时失效
func (s *UserService) SetBanned(ctx context.Context, actor *model.User, targetID string, banned bool) (*model.User, error) {
	action := policy.ActionBanUser
	if !banned {
		action = policy.ActionUnbanUser
	}
	if err := policy.Decide(actor, action, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetBanned(ctx, target.ID, banned); err != nil {
		return nil, pkg.NewInternal("update ban flag", err)
	}
	target.Banned = banned
	zap.L().Info("User ban flag changed",
		zap.String("actor_id", actor.ID),
		zap.String("user_id", target.ID),
		zap.Bool("banned", banned),
	)
	return target, nil
}

// EnsureAdmin 引导管理员：邮箱不存在时创建，已存在则不做任何修改
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, errors.New("admin email and password are required")
	}
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	id, err := NewUserID(s.now())
	if err != nil {
		return false, err
	}
	admin := &model.User{
		ID:            id,
		Email:         email,
		FirstName:     "Admin",
		LastName:      "BlackByte",
		Password:      &hash,
		AuthType:      model.AuthTypeLocal,
		EmailVerified: true,
		Role:          model.RoleAdmin,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
