package service

import (
	"context"
	"errors"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/policy"
	"BlackByte_Forum/internal/repository/mysql"
	"BlackByte_Forum/internal/repository/redis"
)

type EmailService struct {
	codes  *redis.EmailRepository
	users  *mysql.UserRepository
	mailer pkg.Mailer
}

func NewEmailService(codes *redis.EmailRepository, users *mysql.UserRepository, mailer pkg.Mailer) *EmailService {
	return &EmailService{codes: codes, users: users, mailer: mailer}
}

// SendVerifyCode 发送邮箱验证码：先写 pending，邮件发出后再转为 confirmed
func (s *EmailService) SendVerifyCode(ctx context.Context, actor *model.User) error {
	if err := policy.Decide(actor, policy.ActionVerifyEmail, policy.Resource{}).Err(); err != nil {
		return err
	}
	if actor.EmailVerified {
		return pkg.NewValidation("email already verified", nil)
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return pkg.NewInternal("generate code", err)
	}
	if err = s.codes.SaveCodePending(ctx, actor.Email, code); err != nil {
		return pkg.NewInternal("save code", err)
	}

	html := pkg.EmailCodeHTML("email verification", code, redis.DefaultEmailCodeTTL)
	if err = s.mailer.Send(actor.Email, "Verify your email", html); err != nil {
		_ = s.codes.DeleteCodePending(ctx, actor.Email)
		return pkg.NewInternal("send email", err)
	}

	if err = s.codes.ConfirmCode(ctx, actor.Email); err != nil {
		// 如果确认失败，清除pending键
		_ = s.codes.DeleteCodePending(ctx, actor.Email)
		return pkg.NewInternal("confirm code", err)
	}
	return nil
}

// Verify 校验验证码并一次性删除
func (s *EmailService) Verify(ctx context.Context, actor *model.User, code string) error {
	if err := policy.Decide(actor, policy.ActionVerifyEmail, policy.Resource{}).Err(); err != nil {
		return err
	}
	err := s.codes.ConsumeCode(ctx, actor.Email, code)
	switch {
	case err == nil:
	case errors.Is(err, redis.ErrEmailCodeMismatch), errors.Is(err, redis.ErrEmailNotFound):
		return pkg.NewValidation("invalid or expired code", map[string]string{"code": "invalid"})
	default:
		return pkg.NewInternal("check code", err)
	}

	if err := s.users.MarkEmailVerified(ctx, actor.ID); err != nil {
		return pkg.NewInternal("mark email verified", err)
	}
	actor.EmailVerified = true
	return nil
}
