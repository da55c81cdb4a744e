package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
	"video-translate-service/pkg/workspace"
)

// SynthesisService 把转写结果变成目标语言的配音或字幕图层
type SynthesisService interface {
	// SynthesizeNarration 翻译全文并合成一条配音，返回 mp3 路径
	SynthesizeNarration(ctx context.Context, job *entity.TranslationJob, transcript *entity.Transcript, ws *workspace.Workspace) (string, error)
	// RenderCaptions 逐段翻译并渲染字幕图片，时间窗口与原分段一致
	RenderCaptions(ctx context.Context, job *entity.TranslationJob, transcript *entity.Transcript, frame vo.MediaInfo, ws *workspace.Workspace) ([]entity.CaptionLayer, error)
}

type synthesisServiceImpl struct {
	translation TranslationService
	tts         gateway.SpeechSynthesizer
	renderer    gateway.CaptionRenderer
}

func NewSynthesisService(translation TranslationService, tts gateway.SpeechSynthesizer, renderer gateway.CaptionRenderer) SynthesisService {
	return &synthesisServiceImpl{
		translation: translation,
		tts:         tts,
		renderer:    renderer,
	}
}

func (s *synthesisServiceImpl) SynthesizeNarration(ctx context.Context, job *entity.TranslationJob, transcript *entity.Transcript, ws *workspace.Workspace) (string, error) {
	source := strings.TrimSpace(transcript.FullText)
	if source == "" {
		return "", errno.NewBizError(errno.ErrMedia, errors.New("no speech detected, nothing to narrate"))
	}
	text := s.translation.TranslateOrFallback(ctx, source, job.TargetLang())

	out := ws.Path("narration.mp3")
	if err := s.tts.Synthesize(ctx, text, job.TargetLang(), out); err != nil {
		return "", errno.NewBizError(errno.ErrMedia, fmt.Errorf("synthesize narration: %w", err))
	}
	logger.Info("Narration synthesized", map[string]interface{}{
		"job_id":      job.JobID(),
		"target_lang": job.TargetLang(),
		"chars":       len([]rune(text)),
	})
	return out, nil
}

func (s *synthesisServiceImpl) RenderCaptions(ctx context.Context, job *entity.TranslationJob, transcript *entity.Transcript, frame vo.MediaInfo, ws *workspace.Workspace) ([]entity.CaptionLayer, error) {
	dir, err := ws.MkdirAll("captions")
	if err != nil {
		return nil, errno.NewBizError(errno.ErrMedia, err)
	}

	segments := transcript.SpokenSegments()
	layers := make([]entity.CaptionLayer, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seg.End <= seg.Start {
			logger.Debug("Skip zero-length segment", map[string]interface{}{
				"job_id": job.JobID(),
				"start":  seg.Start,
				"end":    seg.End,
			})
			continue
		}
		text := strings.TrimSpace(s.translation.TranslateOrFallback(ctx, strings.TrimSpace(seg.Text), job.TargetLang()))
		if text == "" {
			continue
		}

		imgPath := filepath.Join(dir, fmt.Sprintf("caption_%04d.png", i))
		w, h, err := s.renderer.Render(text, frame.Width, frame.Height, imgPath)
		if err != nil {
			return nil, errno.NewBizError(errno.ErrMedia, fmt.Errorf("render caption %d: %w", i, err))
		}
		layers = append(layers, entity.CaptionLayer{
			ImagePath: imgPath,
			Text:      text,
			Start:     seg.Start,
			End:       seg.End,
			Width:     w,
			Height:    h,
		})
	}

	logger.Info("Captions rendered", map[string]interface{}{
		"job_id":   job.JobID(),
		"segments": len(transcript.Segments),
		"layers":   len(layers),
	})
	return layers, nil
}
