package vo

import (
	"errors"
	"time"
)

// PublishKind 存储服务返回的URL类型
type PublishKind int

const (
	PublishKindFailed PublishKind = iota
	PublishKindPublic
	PublishKindSigned
)

// PublishResult 存储适配器对外统一的结果，适配器在边界处完成归一化
type PublishResult struct {
	Kind      PublishKind
	URL       string
	ExpiresAt time.Time
	Reason    string
}

// PublicOK 公开访问地址
func PublicOK(url string) PublishResult {
	return PublishResult{Kind: PublishKindPublic, URL: url}
}

// SignedOK 带过期时间的签名地址
func SignedOK(url string, expiresAt time.Time) PublishResult {
	return PublishResult{Kind: PublishKindSigned, URL: url, ExpiresAt: expiresAt}
}

// PublishFailed 获取地址失败
func PublishFailed(reason string) PublishResult {
	return PublishResult{Kind: PublishKindFailed, Reason: reason}
}

// Resolve 返回可用的URL; 失败或URL为空时返回错误
func (r PublishResult) Resolve() (string, error) {
	switch r.Kind {
	case PublishKindPublic, PublishKindSigned:
		if r.URL == "" {
			return "", errors.New("storage returned an empty url")
		}
		return r.URL, nil
	default:
		if r.Reason == "" {
			return "", errors.New("storage did not return a url")
		}
		return "", errors.New(r.Reason)
	}
}
