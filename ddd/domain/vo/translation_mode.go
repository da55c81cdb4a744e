package vo

import (
	"strings"

	"video-translate-service/pkg/errno"
)

// TranslationMode 翻译产物形式
type TranslationMode string

const (
	// TranslationModeVoice 用合成配音替换原音轨
	TranslationModeVoice TranslationMode = "voice"
	// TranslationModeSubtitle 烧录逐段字幕，保留原音轨
	TranslationModeSubtitle TranslationMode = "subtitle"
)

// ParseTranslationMode 解析请求中的模式，空值默认为 voice
func ParseTranslationMode(s string) (TranslationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "voice", "audio", "dub":
		return TranslationModeVoice, nil
	case "subtitle", "subtitles", "captions":
		return TranslationModeSubtitle, nil
	default:
		return "", errno.ErrInvalidMode
	}
}

// IsValid 检查模式是否有效
func (m TranslationMode) IsValid() bool {
	return m == TranslationModeVoice || m == TranslationModeSubtitle
}

// String 返回模式字符串
func (m TranslationMode) String() string {
	return string(m)
}
