package service

import (
	"context"
	"errors"
	"strings"

	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
)

// TranslationService 翻译失败时降级为原文，不会中断作业
type TranslationService interface {
	TranslateOrFallback(ctx context.Context, text, targetLang string) string
}

type translationServiceImpl struct {
	translator gateway.TextTranslator
}

func NewTranslationService(translator gateway.TextTranslator) TranslationService {
	return &translationServiceImpl{translator: translator}
}

func (s *translationServiceImpl) TranslateOrFallback(ctx context.Context, text, targetLang string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	translated, err := s.translator.Translate(ctx, text, targetLang)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = errEmptyTranslation
	}
	if err != nil {
		logger.Warn("Translation failed, using source text", map[string]interface{}{
			"target_lang": targetLang,
			"chars":       len([]rune(text)),
			"error":       errno.NewBizError(errno.ErrTranslation, err).Error(),
		})
		return text
	}
	return translated
}

var errEmptyTranslation = errors.New("translator returned empty text")
