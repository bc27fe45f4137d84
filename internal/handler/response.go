package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"BlackByte_Forum/internal/middleware"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var registerOnce sync.Once

// RegisterValidator 让校验错误使用 json 字段名
func RegisterValidator() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}

func requestID(c *gin.Context) string {
	return c.GetString(middleware.ContextRequestIDKey)
}

// respondError 按错误类型输出状态码；Internal 只记录日志，不把原因返回给客户端
func respondError(c *gin.Context, err error) {
	status := pkg.StatusOf(err)
	body := gin.H{"requestID": requestID(c)}

	var e *pkg.Error
	if errors.As(err, &e) && e.Kind != pkg.KindInternal {
		body["msg"] = e.Msg
		if len(e.Fields) > 0 {
			body["errors"] = e.Fields
		}
	} else {
		body["msg"] = "internal server error"
		zap.L().Error("Request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

// bindError 把绑定/校验失败转为 Validation 错误
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return pkg.NewValidation("invalid params", fields)
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return pkg.NewValidation("request body too large", nil)
	}
	return pkg.NewValidation("invalid params", nil)
}

// fileError 上传文件校验失败
func fileError(field string, err error) error {
	switch {
	case errors.Is(err, pkg.ErrNoFile):
		return pkg.NewValidation("no file uploaded", map[string]string{field: "required"})
	case errors.Is(err, pkg.ErrFileTooLarge), errors.Is(err, pkg.ErrFileNameTooLong), errors.Is(err, pkg.ErrTooManyFiles):
		return pkg.NewValidation(err.Error(), map[string]string{field: "max"})
	case errors.Is(err, pkg.ErrFileTypeUnsupported):
		return pkg.NewValidation(err.Error(), map[string]string{field: "image"})
	default:
		return pkg.NewValidation("invalid file", map[string]string{field: "file"})
	}
}

// page 读取 limit/offset，非法数字按缺省处理
func page(c *gin.Context, def int) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return service.ClampPage(limit, offset, def)
}

func ok(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"msg": msg})
}
