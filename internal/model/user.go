package model

import (
	"slices"
	"strings"
	"time"
)

const (
	RoleMember    = "member"
	RoleVIP       = "vip"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

const (
	AuthTypeLocal = "local"
	// AuthTypeFederated 历史外部登录账号，保留数据但不能登录
	AuthTypeFederated = "federated"
)

// Roles 合法角色
var Roles = []string{RoleMember, RoleVIP, RoleModerator, RoleAdmin}

func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// IsStaff 管理员或版主
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}

type User struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Email           string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username        *string   `gorm:"size:64" json:"username"`
	FirstName       string    `gorm:"size:100" json:"firstName"`
	LastName        string    `gorm:"size:100" json:"lastName"`
	Avatar          string    `gorm:"size:512" json:"avatar"`
	ProfileImageURL string    `gorm:"size:512" json:"profileImageUrl"`
	Password        *string   `gorm:"size:255" json:"-"` // 外部认证账号为空
	AuthType        string    `gorm:"size:16;not null;default:'local'" json:"authType"`
	EmailVerified   bool      `gorm:"not null;default:false" json:"emailVerified"`
	Role            string    `gorm:"size:16;not null;default:'member'" json:"role"`
	Banned          bool      `gorm:"not null;default:false" json:"banned"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DisplayName 优先用户名，其次姓名
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
