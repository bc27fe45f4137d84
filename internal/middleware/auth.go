package middleware

import (
	"context"
	"net/http"

	"BlackByte_Forum/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// SessionResolver 把 cookie 值解析为用户，解析失败返回 nil（匿名）
type SessionResolver interface {
	Resolve(ctx context.Context, token string) *model.User
}

// Session 每个请求都尝试解析会话，匿名请求照常放行
func Session(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if user := resolver.Resolve(c.Request.Context(), token); user != nil {
				// 注入当前用户
				c.Set(ContextUserKey, user)
				c.Set(ContextUserIDKey, user.ID)
			}
		}
		c.Next()
	}
}

// RequireAuth 未登录直接 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"msg":       "not authenticated",
				"requestID": c.GetString(ContextRequestIDKey),
			})
			return
		}
		c.Next()
	}
}

// CurrentUser 匿名请求返回 nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
