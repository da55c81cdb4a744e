package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"

	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/internal/resource"
	"video-translate-service/pkg/logger"
)

// SupabaseStorage Supabase Storage 实现; storage-go 的返回形态在这里归一化为 PublishResult
type SupabaseStorage struct {
	client     *storage_go.Client
	bucket     string
	projectURL string
}

func NewSupabaseStorage(res *resource.SupabaseResource) gateway.StorageGateway {
	return &SupabaseStorage{
		client:     res.Client().Storage,
		bucket:     res.Bucket(),
		projectURL: strings.TrimRight(res.ProjectURL(), "/"),
	}
}

func (s *SupabaseStorage) Upload(_ context.Context, localPath, objectKey, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	if contentType == "" {
		contentType = getContentTypeFromExtension(objectKey)
	}
	upsert := false
	if _, err := s.client.UploadFile(s.bucket, objectKey, file, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		logger.Error("Failed to upload file to Supabase", map[string]interface{}{
			"bucket":     s.bucket,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("upload file to supabase failed: %w", err)
	}
	logger.Info("File uploaded successfully", map[string]interface{}{
		"bucket":     s.bucket,
		"object_key": objectKey,
	})
	return nil
}

func (s *SupabaseStorage) PublicURL(_ context.Context, objectKey string) vo.PublishResult {
	resp := s.client.GetPublicUrl(s.bucket, objectKey)
	return normalizeSupabaseURL(s.projectURL, resp.SignedURL, 0)
}

func (s *SupabaseStorage) SignedURL(_ context.Context, objectKey string, ttl time.Duration) vo.PublishResult {
	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	resp, err := s.client.CreateSignedUrl(s.bucket, objectKey, seconds)
	if err != nil {
		return vo.PublishFailed(fmt.Sprintf("create signed url for %s: %v", objectKey, err))
	}
	return normalizeSupabaseURL(s.projectURL, resp.SignedURL, ttl)
}

func (s *SupabaseStorage) Remove(_ context.Context, objectKey string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{objectKey}); err != nil {
		return fmt.Errorf("remove object from supabase failed: %w", err)
	}
	return nil
}

// normalizeSupabaseURL 处理不同版本返回的绝对地址或以 /object 开头的相对地址; ttl>0 时视为签名地址
func normalizeSupabaseURL(projectURL, raw string, ttl time.Duration) vo.PublishResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return vo.PublishFailed("supabase returned an empty url")
	}
	if !vo.HasHTTPScheme(raw) {
		if !strings.HasPrefix(raw, "/") {
			raw = "/" + raw
		}
		if !strings.HasPrefix(raw, "/storage/v1") {
			raw = "/storage/v1" + raw
		}
		raw = projectURL + raw
	}
	if ttl > 0 {
		return vo.SignedOK(raw, time.Now().Add(ttl))
	}
	return vo.PublicOK(raw)
}
