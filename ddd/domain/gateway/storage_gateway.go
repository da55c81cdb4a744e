package gateway

import (
	"context"
	"time"

	"video-translate-service/ddd/domain/vo"
)

// StorageGateway 对象存储网关，bucket 由具体实现持有
type StorageGateway interface {
	// Upload 上传本地文件
	Upload(ctx context.Context, localPath, objectKey, contentType string) error
	// PublicURL 获取公开访问地址
	PublicURL(ctx context.Context, objectKey string) vo.PublishResult
	// SignedURL 获取限时签名地址
	SignedURL(ctx context.Context, objectKey string, ttl time.Duration) vo.PublishResult
	// Remove 删除对象，用于失败回滚
	Remove(ctx context.Context, objectKey string) error
}
