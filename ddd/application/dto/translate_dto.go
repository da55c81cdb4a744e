package dto

import (
	"time"

	"video-translate-service/ddd/domain/entity"
)

// TranslationResultDTO 翻译成功后返回给调用方的结果
type TranslationResultDTO struct {
	TranslationMode string `json:"translationMode"`
	TranslatedURL   string `json:"translatedUrl"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	TargetLang      string `json:"targetLang"`
	OriginalURL     string `json:"originalUrl,omitempty"`
	VideoID         string `json:"videoId"`
}

func NewTranslationResultDTO(a *entity.TranslatedArtifact) *TranslationResultDTO {
	if a == nil {
		return nil
	}
	return &TranslationResultDTO{
		TranslationMode: a.Mode.String(),
		TranslatedURL:   a.TranslatedURL,
		ThumbnailURL:    a.ThumbnailURL,
		TargetLang:      a.TargetLanguage,
		OriginalURL:     a.OriginalURL,
		VideoID:         a.VideoID,
	}
}

// JobAcceptedDTO 异步提交的响应
type JobAcceptedDTO struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// JobStatusDTO 作业状态查询结果
type JobStatusDTO struct {
	JobID     string                `json:"jobId"`
	Status    string                `json:"status"`
	Progress  int                   `json:"progress"`
	Message   string                `json:"message,omitempty"`
	Result    *TranslationResultDTO `json:"result,omitempty"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func NewJobStatusDTO(p *entity.JobProgress) *JobStatusDTO {
	return &JobStatusDTO{
		JobID:     p.JobID,
		Status:    p.Status.String(),
		Progress:  p.Progress,
		Message:   p.Message,
		Result:    NewTranslationResultDTO(p.Result),
		UpdatedAt: p.UpdatedAt,
	}
}
