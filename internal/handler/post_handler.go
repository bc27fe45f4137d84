package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"BlackByte_Forum/internal/middleware"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/service"
	"BlackByte_Forum/internal/storage"

	"github.com/gin-gonic/gin"
)

const attachmentsField = "attachments"

// UploadLimits 上传准入限制，在调用任何存储之前检查
type UploadLimits struct {
	MaxSize  int64
	MaxFiles int
}

type PostHandler struct {
	svc    *service.PostService
	limits UploadLimits
}

// CreatePostReq 支持 JSON 与 multipart 两种提交方式
type CreatePostReq struct {
	Title   string `json:"title" form:"title" binding:"required,max=200"`
	Content string `json:"content" form:"content" binding:"required"`
	ForumID string `json:"forumId" form:"forumId" binding:"required"`
}

type UpdatePostReq struct {
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Content *string `json:"content"`
}

type ModeratePostReq struct {
	Pinned *bool `json:"pinned"`
	Locked *bool `json:"locked"`
}

func NewPostHandler(svc *service.PostService, limits UploadLimits) *PostHandler {
	return &PostHandler{svc: svc, limits: limits}
}

// List 帖子列表，可按论坛过滤
func (h *PostHandler) List(c *gin.Context) {
	limit, offset := page(c, service.DefaultPageSize)
	posts, err := h.svc.List(c.Request.Context(), c.Query("forumId"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Search 标题或正文包含 q；q 为空返回 []
func (h *PostHandler) Search(c *gin.Context) {
	limit, offset := page(c, service.DefaultPageSize)
	posts, err := h.svc.Search(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get 帖子详情，浏览数 +1
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.svc.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create 创建帖子，multipart 时最多附带 MaxFiles 张图片
func (h *PostHandler) Create(c *gin.Context) {
	var req CreatePostReq
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	var headers []*multipart.FileHeader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, bindError(err))
			return
		}
		headers = form.File[attachmentsField]
	}

	files, closeAll, err := h.admit(headers)
	defer closeAll()
	if err != nil {
		respondError(c, err)
		return
	}

	post, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		ForumID: req.ForumID,
	}, files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// admit 校验数量、大小与图片类型，返回已打开的文件
func (h *PostHandler) admit(headers []*multipart.FileHeader) ([]storage.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	if len(headers) > h.limits.MaxFiles {
		return nil, closeAll, fileError(attachmentsField, pkg.ErrTooManyFiles)
	}

	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		f, mime, err := pkg.CheckImage(fh, h.limits.MaxSize)
		if err != nil {
			return nil, closeAll, fileError(attachmentsField, err)
		}
		opened = append(opened, f)
		files = append(files, storage.File{
			Name:        fh.Filename,
			ContentType: mime,
			Size:        fh.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}

func (h *PostHandler) Update(c *gin.Context) {
	var req UpdatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	post, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Moderate 置顶/锁定
func (h *PostHandler) Moderate(c *gin.Context) {
	var req ModeratePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	post, err := h.svc.Moderate(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), service.ModeratePostInput{
		Pinned: req.Pinned,
		Locked: req.Locked,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete 删除帖子接口
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "post deleted")
}
