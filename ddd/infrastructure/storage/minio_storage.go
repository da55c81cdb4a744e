package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/internal/resource"
	"video-translate-service/pkg/logger"
)

// MinioStorage MinIO存储实现
type MinioStorage struct {
	minioResource *resource.MinioResource
	publicBase    string
}

// NewMinioStorage 创建MinIO存储实例; publicBase 非空时公开地址以它为前缀（如 CDN 域名）
func NewMinioStorage(minioResource *resource.MinioResource, publicBase string) gateway.StorageGateway {
	return &MinioStorage{
		minioResource: minioResource,
		publicBase:    strings.TrimRight(publicBase, "/"),
	}
}

// Upload 上传本地文件
func (s *MinioStorage) Upload(ctx context.Context, localPath, objectKey, contentType string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	// 打开本地文件
	file, err := os.Open(localPath)
	if err != nil {
		logger.Error("Failed to open local file", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("get file info failed: %w", err)
	}

	if contentType == "" {
		contentType = getContentTypeFromExtension(objectKey)
	}

	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to upload file to MinIO", map[string]interface{}{
			"local_path": localPath,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("upload file to minio failed: %w", err)
	}

	logger.Info("File uploaded successfully", map[string]interface{}{
		"object_key":   objectKey,
		"content_type": contentType,
		"size":         fileInfo.Size(),
	})
	return nil
}

// PublicURL 桶需配置匿名读策略
func (s *MinioStorage) PublicURL(_ context.Context, objectKey string) vo.PublishResult {
	base := s.publicBase
	if base == "" {
		base = s.minioResource.BaseURL() + "/" + s.minioResource.GetBucketName()
	}
	return vo.PublicOK(joinObjectURL(base, objectKey))
}

// SignedURL 预签名 GET 地址
func (s *MinioStorage) SignedURL(ctx context.Context, objectKey string, ttl time.Duration) vo.PublishResult {
	u, err := s.minioResource.GetClient().PresignedGetObject(ctx, s.minioResource.GetBucketName(), objectKey, ttl, url.Values{})
	if err != nil {
		logger.Warn("Failed to presign object", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return vo.PublishFailed(fmt.Sprintf("presign %s: %v", objectKey, err))
	}
	return vo.SignedOK(u.String(), time.Now().Add(ttl))
}

// Remove 删除对象
func (s *MinioStorage) Remove(ctx context.Context, objectKey string) error {
	err := s.minioResource.GetClient().RemoveObject(ctx, s.minioResource.GetBucketName(), objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object from minio failed: %w", err)
	}
	return nil
}

// joinObjectURL 对 key 的每一段做转义后拼接
func joinObjectURL(base, objectKey string) string {
	parts := strings.Split(strings.TrimLeft(objectKey, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

// getContentTypeFromExtension 根据文件扩展名获取内容类型
func getContentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
