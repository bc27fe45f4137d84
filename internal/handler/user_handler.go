package handler

import (
	"net/http"

	"BlackByte_Forum/internal/middleware"
	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/service"

	"github.com/gin-gonic/gin"
)

// CookieConfig 会话 cookie 设置
type CookieConfig struct {
	Name   string
	Secure bool
}

type UserHandler struct {
	users    *service.UserService
	sessions *service.SessionService
	cookie   CookieConfig
}

// RegisterReq 注册请求体
type RegisterReq struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RoleReq struct {
	Role string `json:"role" binding:"required"`
}

func NewUserHandler(users *service.UserService, sessions *service.SessionService, cookie CookieConfig) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, cookie: cookie}
}

func userSummary(u *model.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"email":           u.Email,
		"firstName":       u.FirstName,
		"lastName":        u.LastName,
		"role":            u.Role,
		"profileImageUrl": u.ProfileImageURL,
	}
}

// startSession 签发会话并写 cookie
func (h *UserHandler) startSession(c *gin.Context, user *model.User) error {
	token, _, err := h.sessions.Issue(c.Request.Context(), user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookie.Secure, true)
	return nil
}

// Register 注册接口，成功后直接登录
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.startSession(c, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "account created", "user": userSummary(user)})
}

// Login 登录接口
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.startSession(c, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "logged in", "user": userSummary(user)})
}

// Logout 删除服务端会话并清除 cookie
func (h *UserHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	ok(c, "logged out")
}

// Me 当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewUserProfile(middleware.CurrentUser(c)))
}

// List 管理员查看全部用户
func (h *UserHandler) List(c *gin.Context) {
	limit, offset := page(c, service.MaxPageSize)
	users, err := h.users.List(c.Request.Context(), middleware.CurrentUser(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req RoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	user, err := h.users.ChangeRole(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "role updated", "user": userSummary(user)})
}

func (h *UserHandler) Ban(c *gin.Context) {
	h.setBanned(c, true)
}

func (h *UserHandler) Unban(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *UserHandler) setBanned(c *gin.Context, banned bool) {
	user, err := h.users.SetBanned(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), banned)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "user banned"
	if !banned {
		msg = "user unbanned"
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "user": userSummary(user)})
}
