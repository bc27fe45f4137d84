package handler

import (
	"BlackByte_Forum/internal/middleware"
	"BlackByte_Forum/internal/service"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	svc *service.EmailService
}

type VerifyReq struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

func NewEmailHandler(svc *service.EmailService) *EmailHandler {
	return &EmailHandler{svc: svc}
}

// SendCode 给当前用户邮箱发送验证码
func (h *EmailHandler) SendCode(c *gin.Context) {
	if err := h.svc.SendVerifyCode(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "code sent")
}

// Verify 校验code和服务端的是否相同
func (h *EmailHandler) Verify(c *gin.Context) {
	var req VerifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	if err := h.svc.Verify(c.Request.Context(), middleware.CurrentUser(c), req.Code); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "email verified")
}
