package service

import (
	"context"

	"BlackByte_Forum/internal/model"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/policy"
	"BlackByte_Forum/internal/storage"
)

type UploadService struct {
	files storage.FileStorage
}

func NewUploadService(files storage.FileStorage) *UploadService {
	return &UploadService{files: files}
}

type UploadResult struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// Upload 单张图片，类型与大小已在边界校验
func (s *UploadService) Upload(ctx context.Context, actor *model.User, f storage.File) (*UploadResult, error) {
	if err := policy.Decide(actor, policy.ActionUpload, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	stored, err := s.files.Put(ctx, f)
	if err != nil {
		return nil, pkg.NewInternal("store upload", err)
	}
	return &UploadResult{
		FileName: f.Name,
		FileURL:  stored.URL,
		FileType: f.ContentType,
		FileSize: f.Size,
	}, nil
}
