package handler

import (
	"net/http"

	"BlackByte_Forum/internal/middleware"
	"BlackByte_Forum/internal/service"

	"github.com/gin-gonic/gin"
)

type ForumHandler struct {
	svc *service.ForumService
}

type CreateForumReq struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	Slug        string `json:"slug" binding:"required,max=128"`
	Category    string `json:"category" binding:"omitempty,max=64"`
	Icon        string `json:"icon" binding:"omitempty,max=64"`
	Color       string `json:"color" binding:"omitempty,max=16"`
}

func NewForumHandler(svc *service.ForumService) *ForumHandler {
	return &ForumHandler{svc: svc}
}

func (h *ForumHandler) List(c *gin.Context) {
	forums, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forums)
}

// Get 按 slug 查看论坛，浏览数 +1
func (h *ForumHandler) Get(c *gin.Context) {
	forum, err := h.svc.View(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forum)
}

func (h *ForumHandler) Create(c *gin.Context) {
	var req CreateForumReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	forum, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), service.CreateForumInput{
		Title:       req.Title,
		Description: req.Description,
		Slug:        req.Slug,
		Category:    req.Category,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, forum)
}

func (h *ForumHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "forum deleted")
}
