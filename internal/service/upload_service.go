package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/store-next/internal/config"

	"github.com/google/uuid"
)

// UploadService 文件上传服务
type UploadService struct {
	cfg *config.Config
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// SaveProductPhoto 保存商品图片，返回可写入 photo 字段的相对路径。
// 错误文案面向客户端，作为 photo 字段的校验错误返回。
func (s *UploadService) SaveProductPhoto(file *multipart.FileHeader) (string, error) {
	if file.Size > s.cfg.Upload.MaxSize {
		return "", fmt.Errorf("Ensure the file is no larger than %d bytes.", s.cfg.Upload.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.Upload.AllowedExtensions) > 0 && !isAllowedExtension(ext, s.cfg.Upload.AllowedExtensions) {
		return "", fmt.Errorf("File extension %q is not allowed.", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.New("Upload could not be read.")
	}
	defer src.Close()

	// 读取文件头部识别真实 MIME 类型
	buffer := make([]byte, 512)
	if _, err := src.Read(buffer); err != nil && err != io.EOF {
		return "", errors.New("Upload could not be read.")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", errors.New("Upload could not be read.")
	}
	contentType := http.DetectContentType(buffer)
	if len(s.cfg.Upload.AllowedTypes) > 0 && !isAllowedType(contentType, s.cfg.Upload.AllowedTypes) {
		return "", fmt.Errorf("File type %q is not allowed.", contentType)
	}

	dir := filepath.Join(strings.TrimSpace(s.cfg.Upload.Dir), "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New("Upload could not be stored.")
	}

	filename := uuid.NewString() + ext
	destPath := filepath.Join(dir, filename)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", errors.New("Upload could not be stored.")
	}
	defer dest.Close()
	if _, err := io.Copy(dest, src); err != nil {
		return "", errors.New("Upload could not be stored.")
	}

	return "/uploads/products/" + filename, nil
}

// ReadWarrantyFile 读取保修文件内容（只写字段，内容折叠进 description）
func (s *UploadService) ReadWarrantyFile(file *multipart.FileHeader) (string, error) {
	if file.Size > s.cfg.Upload.MaxSize {
		return "", fmt.Errorf("Ensure the file is no larger than %d bytes.", s.cfg.Upload.MaxSize)
	}
	src, err := file.Open()
	if err != nil {
		return "", errors.New("Upload could not be read.")
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return "", errors.New("Upload could not be read.")
	}
	return string(content), nil
}

func isAllowedExtension(ext string, allowed []string) bool {
	if ext == "" {
		return false
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

func isAllowedType(contentType string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, contentType) {
			return true
		}
	}
	return false
}
