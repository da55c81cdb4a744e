package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// MinioResource MinIO客户端及产物所在的桶
type MinioResource struct {
	client     *minio.Client
	bucketName string
	endpoint   string
	useSSL     bool
}

// NewMinioResource 创建客户端并确保桶存在
func NewMinioResource(ctx context.Context, cfg config.MinioConfig) (*MinioResource, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("minio bucket_name is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	r := WrapMinio(client, cfg.BucketName, cfg.Endpoint, cfg.UseSSL)
	if err := r.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("MinIO resource initialized", map[string]interface{}{
		"endpoint":    cfg.Endpoint,
		"bucket_name": cfg.BucketName,
	})
	return r, nil
}

// WrapMinio 使用已有客户端
func WrapMinio(client *minio.Client, bucketName, endpoint string, useSSL bool) *MinioResource {
	return &MinioResource{client: client, bucketName: bucketName, endpoint: endpoint, useSSL: useSSL}
}

// ensureBucket 确保桶存在
func (r *MinioResource) ensureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check minio bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.client.MakeBucket(ctx, r.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create minio bucket: %w", err)
	}
	return nil
}

// GetClient 获取MinIO客户端
func (r *MinioResource) GetClient() *minio.Client {
	return r.client
}

// GetBucketName 获取桶名称
func (r *MinioResource) GetBucketName() string {
	return r.bucketName
}

// BaseURL 直连 MinIO 的访问前缀
func (r *MinioResource) BaseURL() string {
	scheme := "http"
	if r.useSSL {
		scheme = "https"
	}
	return scheme + "://" + r.endpoint
}
