package entity

import "video-translate-service/ddd/domain/vo"

// TranslatedArtifact 作业成功后的结果
type TranslatedArtifact struct {
	VideoID        string             `json:"video_id"`
	Mode           vo.TranslationMode `json:"translation_mode"`
	TranslatedURL  string             `json:"translated_url"`
	ThumbnailURL   string             `json:"thumbnail_url"`
	TargetLanguage string             `json:"target_lang"`
	OriginalURL    string             `json:"original_url"`
}
