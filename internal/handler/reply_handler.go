package handler

import (
	"net/http"

	"BlackByte_Forum/internal/middleware"
	"BlackByte_Forum/internal/service"

	"github.com/gin-gonic/gin"
)

type ReplyHandler struct {
	svc *service.ReplyService
}

type CreateReplyReq struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parentId"`
}

type UpdateReplyReq struct {
	Content string `json:"content" binding:"required"`
}

func NewReplyHandler(svc *service.ReplyService) *ReplyHandler {
	return &ReplyHandler{svc: svc}
}

// List 帖子回复，按时间正序；路由参数 id 为帖子 id
func (h *ReplyHandler) List(c *gin.Context) {
	limit, offset := page(c, service.DefaultReplyPage)
	replies, err := h.svc.List(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

func (h *ReplyHandler) Create(c *gin.Context) {
	var req CreateReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	reply, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), service.CreateReplyInput{
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (h *ReplyHandler) Update(c *gin.Context) {
	var req UpdateReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	reply, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *ReplyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "reply deleted")
}
