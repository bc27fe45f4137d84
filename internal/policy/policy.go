// Package policy 权限判定：谁能对什么资源做什么操作。
// 不做任何 I/O，归属、邮箱是否已存在、登录校验结果等事实由调用方放进 Resource
package policy

import (
	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
)

type Action string

const (
	ActionRegister Action = "register"
	ActionLogin    Action = "login"
	ActionView     Action = "view"

	ActionCreatePost   Action = "post.create"
	ActionEditPost     Action = "post.edit"
	ActionDeletePost   Action = "post.delete"
	ActionModeratePost Action = "post.moderate"

	ActionCreateReply Action = "reply.create"
	ActionEditReply   Action = "reply.edit"
	ActionDeleteReply Action = "reply.delete"

	ActionUpload      Action = "upload"
	ActionVerifyEmail Action = "user.verify_email"

	ActionCreateForum Action = "forum.create"
	ActionDeleteForum Action = "forum.delete"

	ActionChangeRole Action = "user.role"
	ActionBanUser    Action = "user.ban"
	ActionUnbanUser  Action = "user.unban"
	ActionListUsers  Action = "user.list"
)

type Outcome int

const (
	Allow Outcome = iota
	DenyUnauthenticated
	DenyForbidden
	DenyConflict
)

type Decision struct {
	Outcome Outcome
	Reason  string
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Err 拒绝时转换为对应的业务错误，允许时返回 nil
func (d Decision) Err() error {
	switch d.Outcome {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return pkg.NewUnauthenticated(d.Reason)
	case DenyConflict:
		return pkg.NewConflict(d.Reason)
	default:
		return pkg.NewForbidden(d.Reason)
	}
}

// LoginFacts 登录判定所需事实，按 Found -> Local -> Banned -> PasswordMatches 顺序判定
type LoginFacts struct {
	Found           bool
	Local           bool
	Banned          bool
	PasswordMatches bool
}

type Resource struct {
	// OwnerID 帖子或回复的作者
	OwnerID    string
	EmailTaken bool
	Login      *LoginFacts
}

const (
	reasonNotAuthenticated = "not authenticated"
	reasonForbidden        = "access denied"
	reasonBanned           = "account suspended"
	reasonBadCredentials   = "invalid email or password"
	reasonEmailTaken       = "email already registered"
)

func allow() Decision { return Decision{Outcome: Allow} }

func deny(o Outcome, reason string) Decision { return Decision{Outcome: o, Reason: reason} }

// Decide actor 为 nil 表示匿名
func Decide(actor *model.User, action Action, res Resource) Decision {
	switch action {
	case ActionRegister:
		if res.EmailTaken {
			return deny(DenyConflict, reasonEmailTaken)
		}
		return allow()
	case ActionLogin:
		return decideLogin(res.Login)
	case ActionView:
		return allow()
	}

	// 以下操作都需要登录且未被封禁
	if actor == nil {
		return deny(DenyUnauthenticated, reasonNotAuthenticated)
	}
	if actor.Banned {
		return deny(DenyForbidden, reasonBanned)
	}

	switch action {
	case ActionCreatePost, ActionCreateReply, ActionUpload, ActionVerifyEmail:
		return allow()
	case ActionEditPost, ActionDeletePost, ActionEditReply, ActionDeleteReply:
		if res.OwnerID != "" && actor.ID == res.OwnerID {
			return allow()
		}
		return requireStaff(actor)
	// 创建论坛比删除论坛宽松：版主可建不可删
	case ActionCreateForum, ActionModeratePost, ActionBanUser, ActionUnbanUser:
		return requireStaff(actor)
	case ActionDeleteForum, ActionChangeRole, ActionListUsers:
		return requireAdmin(actor)
	default:
		return deny(DenyForbidden, reasonForbidden)
	}
}

func decideLogin(f *LoginFacts) Decision {
	if f == nil || !f.Found || !f.Local {
		return deny(DenyUnauthenticated, reasonBadCredentials)
	}
	if f.Banned {
		return deny(DenyForbidden, reasonBanned)
	}
	if !f.PasswordMatches {
		return deny(DenyUnauthenticated, reasonBadCredentials)
	}
	return allow()
}

func requireStaff(actor *model.User) Decision {
	if model.IsStaff(actor.Role) {
		return allow()
	}
	return deny(DenyForbidden, reasonForbidden)
}

func requireAdmin(actor *model.User) Decision {
	if actor.Role == model.RoleAdmin {
		return allow()
	}
	return deny(DenyForbidden, reasonForbidden)
}
