package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code:"
	EmailVerifyPrefix   = EmailCodePrefix + "verify"

	// 两阶段键
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

var (
	ErrEmailNotFound       = errors.New("email code not found")
	ErrEmailCodeMismatch   = errors.New("email code mismatch")
	ErrEmailCodeDelFailed  = errors.New("email code delete failed")
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
)

// 取值+写入目标+设置 TTL+删除源
var confirmScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`)

// 比对成功才删除，验证码只能用一次
var consumeScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return -1
end
if val ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

// EmailRepository 邮箱验证码：发送前写 pending，邮件发出后转为 confirmed，校验只认 confirmed
type EmailRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

func (e *EmailRepository) ttl() time.Duration {
	if e.TTL > 0 {
		return e.TTL
	}
	return DefaultEmailCodeTTL
}

func verifyKey(phase, email string) string {
	return fmt.Sprintf("%s:%s:%s", EmailVerifyPrefix, phase, email)
}

func (e *EmailRepository) SaveCodePending(ctx context.Context, email, code string) error {
	if err := e.RDB.Set(ctx, verifyKey(PendingSuffix, email), code, e.ttl()).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

// ConfirmCode 将 pending 转为 confirmed（重置 TTL）
func (e *EmailRepository) ConfirmCode(ctx context.Context, email string) error {
	px := int64(e.ttl() / time.Millisecond)
	ok, err := confirmScript.Run(ctx, e.RDB,
		[]string{verifyKey(PendingSuffix, email), verifyKey(ConfirmedSuffix, email)}, px).Int()
	if err != nil || ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DeleteCodePending 删除 pending 键（幂等）
func (e *EmailRepository) DeleteCodePending(ctx context.Context, email string) error {
	if err := e.RDB.Del(ctx, verifyKey(PendingSuffix, email)).Err(); err != nil {
		return ErrEmailCodeDelFailed
	}
	return nil
}

// GetConfirmedCode 获取 confirmed 的验证码
func (e *EmailRepository) GetConfirmedCode(ctx context.Context, email string) (string, error) {
	val, err := e.RDB.Get(ctx, verifyKey(ConfirmedSuffix, email)).Result()
	if err != nil {
		return "", ErrEmailNotFound
	}
	return val, nil
}

// ConsumeCode 校验并删除 confirmed 验证码
func (e *EmailRepository) ConsumeCode(ctx context.Context, email, code string) error {
	res, err := consumeScript.Run(ctx, e.RDB, []string{verifyKey(ConfirmedSuffix, email)}, code).Int()
	if err != nil {
		return err
	}
	switch res {
	case 1:
		return nil
	case 0:
		return ErrEmailCodeMismatch
	default:
		return ErrEmailNotFound
	}
}
