package service

import (
	"context"
	"errors"
	"path/filepath"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/pkg/errno"
)

// SpeechToTextService 抽取音轨并转写; 任何失败都是致命的
type SpeechToTextService interface {
	Transcribe(ctx context.Context, videoPath, workDir string) (*entity.Transcript, error)
}

type speechToTextServiceImpl struct {
	media      gateway.MediaProcessor
	recognizer gateway.SpeechRecognizer
}

func NewSpeechToTextService(media gateway.MediaProcessor, recognizer gateway.SpeechRecognizer) SpeechToTextService {
	return &speechToTextServiceImpl{media: media, recognizer: recognizer}
}

func (s *speechToTextServiceImpl) Transcribe(ctx context.Context, videoPath, workDir string) (*entity.Transcript, error) {
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := s.media.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, errno.NewBizError(errno.ErrTranscription, err)
	}
	transcript, err := s.recognizer.Transcribe(ctx, audioPath, workDir)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrTranscription, err)
	}
	if transcript == nil {
		return nil, errno.NewBizError(errno.ErrTranscription, errors.New("recognizer returned no transcript"))
	}
	return transcript, nil
}
