package pkg

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile              = errors.New("no file provided")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("only image files are allowed")
	ErrTooManyFiles        = errors.New("too many files")
)

const maxFileNameSize = 200

// CheckImage 校验上传文件：大小、文件名、按内容探测的 MIME 必须是图片（不信任请求头）。
// 返回已打开并回到开头的文件和探测出的 MIME，调用方负责关闭。
func CheckImage(fh *multipart.FileHeader, maxSize int64) (multipart.File, string, error) {
	if fh == nil {
		return nil, "", ErrNoFile
	}
	if len(fh.Filename) > maxFileNameSize {
		return nil, "", ErrFileNameTooLong
	}
	if fh.Size > maxSize {
		return nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		f.Close()
		return nil, "", ErrFileTypeUnsupported
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, mime.String(), nil
}
