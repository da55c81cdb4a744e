package service

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
)

// PublishedObject 已上传的对象
type PublishedObject struct {
	Key string
	URL string
}

// ArtifactPublisher 上传产物并换取可访问URL
type ArtifactPublisher interface {
	Publish(ctx context.Context, localPath, prefix, fileName, contentType string) (*PublishedObject, error)
	// PublishPublic 忽略签名配置，总是返回公开地址; 用于需要长期保存的地址
	PublishPublic(ctx context.Context, localPath, prefix, fileName, contentType string) (*PublishedObject, error)
	// Rollback 尽力删除已上传的对象
	Rollback(ctx context.Context, objects []*PublishedObject)
}

type artifactPublisherImpl struct {
	storage   gateway.StorageGateway
	signedTTL time.Duration
	newSuffix func() string
}

// NewArtifactPublisher signedTTL>0 时返回签名地址，否则返回公开地址
func NewArtifactPublisher(storage gateway.StorageGateway, signedTTL time.Duration) ArtifactPublisher {
	return &artifactPublisherImpl{
		storage:   storage,
		signedTTL: signedTTL,
		newSuffix: uuid.NewString,
	}
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename 只保留字母数字和 _ . -，其余替换为 _
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}

// BuildObjectKey <prefix>/<stem>_<suffix><ext>，保证同名文件不会互相覆盖
func BuildObjectKey(prefix, fileName, suffix string) string {
	safe := SanitizeFilename(fileName)
	ext := path.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	if stem == "" {
		stem = "file"
	}
	key := stem + "_" + suffix + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func (p *artifactPublisherImpl) Publish(ctx context.Context, localPath, prefix, fileName, contentType string) (*PublishedObject, error) {
	return p.publish(ctx, localPath, prefix, fileName, contentType, p.signedTTL > 0)
}

func (p *artifactPublisherImpl) PublishPublic(ctx context.Context, localPath, prefix, fileName, contentType string) (*PublishedObject, error) {
	return p.publish(ctx, localPath, prefix, fileName, contentType, false)
}

func (p *artifactPublisherImpl) publish(ctx context.Context, localPath, prefix, fileName, contentType string, signed bool) (*PublishedObject, error) {
	key := BuildObjectKey(prefix, fileName, p.newSuffix())
	if err := p.storage.Upload(ctx, localPath, key, contentType); err != nil {
		return nil, errno.NewBizError(errno.ErrPublish, err)
	}

	result := p.storage.PublicURL(ctx, key)
	if signed {
		result = p.storage.SignedURL(ctx, key, p.signedTTL)
	}
	url, err := result.Resolve()
	if err != nil {
		p.Rollback(ctx, []*PublishedObject{{Key: key}})
		return nil, errno.NewBizError(errno.ErrPublish, err)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		p.Rollback(ctx, []*PublishedObject{{Key: key}})
		return nil, errno.NewBizError(errno.ErrPublish, errors.New("storage returned a non-http url"))
	}

	return &PublishedObject{Key: key, URL: url}, nil
}

func (p *artifactPublisherImpl) Rollback(ctx context.Context, objects []*PublishedObject) {
	for _, obj := range objects {
		if obj == nil || obj.Key == "" {
			continue
		}
		if err := p.storage.Remove(ctx, obj.Key); err != nil {
			logger.Warn("Failed to roll back uploaded object", map[string]interface{}{
				"key":   obj.Key,
				"error": err.Error(),
			})
		}
	}
}
