package vo

import (
	"net/url"
	"strings"

	"video-translate-service/pkg/errno"
)

// MediaSource 视频来源，本地文件与远程URL二选一
type MediaSource struct {
	LocalPath string
	RemoteURL string
}

// Validate 校验来源是否恰好提供了一种
func (s MediaSource) Validate() error {
	local := strings.TrimSpace(s.LocalPath) != ""
	remote := strings.TrimSpace(s.RemoteURL) != ""
	switch {
	case !local && !remote:
		return errno.ErrMissingSource
	case local && remote:
		return errno.ErrAmbiguousSource
	}
	if remote && !HasHTTPScheme(s.RemoteURL) {
		return errno.ErrInvalidInput
	}
	return nil
}

// IsRemote 是否为远程来源
func (s MediaSource) IsRemote() bool {
	return strings.TrimSpace(s.RemoteURL) != ""
}

// HasHTTPScheme 判断URL是否为 http/https 且带有主机名
func HasHTTPScheme(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
