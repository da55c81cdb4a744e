package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
)

// SourceResolver 把上传文件或远程URL解析为本地可读的视频文件
type SourceResolver interface {
	Resolve(ctx context.Context, source vo.MediaSource, workDir string) (string, error)
}

type sourceResolverImpl struct {
	fetcher gateway.MediaFetcher
}

func NewSourceResolver(fetcher gateway.MediaFetcher) SourceResolver {
	return &sourceResolverImpl{fetcher: fetcher}
}

func (r *sourceResolverImpl) Resolve(ctx context.Context, source vo.MediaSource, workDir string) (string, error) {
	if err := source.Validate(); err != nil {
		return "", err
	}

	if !source.IsRemote() {
		local := strings.TrimSpace(source.LocalPath)
		if err := ensureRegularFile(local); err != nil {
			return "", errno.NewBizError(errno.ErrInvalidInput, err)
		}
		return local, nil
	}

	rawURL := strings.TrimSpace(source.RemoteURL)
	dest := filepath.Join(workDir, "source"+remoteExt(rawURL))
	if err := r.fetcher.Fetch(ctx, rawURL, dest); err != nil {
		logger.Warn("Failed to fetch remote media", map[string]interface{}{
			"url":   rawURL,
			"error": err.Error(),
		})
		return "", errno.NewBizError(errno.ErrInvalidInput, err)
	}
	if err := ensureRegularFile(dest); err != nil {
		return "", errno.NewBizError(errno.ErrInvalidInput, err)
	}
	return dest, nil
}

func ensureRegularFile(p string) error {
	st, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("media file %s: %w", filepath.Base(p), err)
	}
	if st.IsDir() {
		return fmt.Errorf("media path %s is a directory", filepath.Base(p))
	}
	return nil
}

// remoteExt 取URL路径的扩展名，缺省为 .mp4
func remoteExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".mp4"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 6 {
		return ".mp4"
	}
	return ext
}

// MediaStem 生成产物文件名所用的主干名
func MediaStem(source vo.MediaSource) string {
	var base string
	if source.IsRemote() {
		if u, err := url.Parse(strings.TrimSpace(source.RemoteURL)); err == nil {
			base = path.Base(u.Path)
		}
	} else {
		base = filepath.Base(strings.TrimSpace(source.LocalPath))
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		return "video"
	}
	return stem
}
