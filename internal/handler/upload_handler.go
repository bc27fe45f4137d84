package handler

import (
	"net/http"

	"BlackByte_Forum/internal/middleware"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/service"
	"BlackByte_Forum/internal/storage"

	"github.com/gin-gonic/gin"
)

const imageField = "image"

type UploadHandler struct {
	svc     *service.UploadService
	maxSize int64
}

func NewUploadHandler(svc *service.UploadService, maxSize int64) *UploadHandler {
	return &UploadHandler{svc: svc, maxSize: maxSize}
}

// Upload 单张图片上传
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		respondError(c, fileError(imageField, pkg.ErrNoFile))
		return
	}
	f, mime, err := pkg.CheckImage(fh, h.maxSize)
	if err != nil {
		respondError(c, fileError(imageField, err))
		return
	}
	defer f.Close()

	res, err := h.svc.Upload(c.Request.Context(), middleware.CurrentUser(c), storage.File{
		Name:        fh.Filename,
		ContentType: mime,
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
