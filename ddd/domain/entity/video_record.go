package entity

import (
	"time"

	"github.com/google/uuid"

	"video-translate-service/ddd/domain/vo"
)

// VideoRecord videos 表中的一行
type VideoRecord struct {
	id              string
	originalURL     string
	title           string
	userID          string
	translatedURL   string
	thumbnailURL    string
	targetLang      string
	translationMode vo.TranslationMode
	createdAt       time.Time
	updatedAt       time.Time
}

// NewVideoRecord 由首次翻译结果创建记录
func NewVideoRecord(job *TranslationJob, artifact *TranslatedArtifact) *VideoRecord {
	now := time.Now().UTC()
	return &VideoRecord{
		id:              uuid.NewString(),
		originalURL:     artifact.OriginalURL,
		title:           job.Title(),
		userID:          job.OwnerID(),
		translatedURL:   artifact.TranslatedURL,
		thumbnailURL:    artifact.ThumbnailURL,
		targetLang:      artifact.TargetLanguage,
		translationMode: artifact.Mode,
		createdAt:       now,
		updatedAt:       now,
	}
}

// RestoreVideoRecord 从持久化数据重建实体
func RestoreVideoRecord(id, originalURL, title, userID, translatedURL, thumbnailURL, targetLang string,
	mode vo.TranslationMode, createdAt, updatedAt time.Time) *VideoRecord {
	return &VideoRecord{
		id:              id,
		originalURL:     originalURL,
		title:           title,
		userID:          userID,
		translatedURL:   translatedURL,
		thumbnailURL:    thumbnailURL,
		targetLang:      targetLang,
		translationMode: mode,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Getters
func (r *VideoRecord) ID() string                          { return r.id }
func (r *VideoRecord) OriginalURL() string                 { return r.originalURL }
func (r *VideoRecord) Title() string                       { return r.title }
func (r *VideoRecord) UserID() string                      { return r.userID }
func (r *VideoRecord) TranslatedURL() string               { return r.translatedURL }
func (r *VideoRecord) ThumbnailURL() string                { return r.thumbnailURL }
func (r *VideoRecord) TargetLang() string                  { return r.targetLang }
func (r *VideoRecord) TranslationMode() vo.TranslationMode { return r.translationMode }
func (r *VideoRecord) CreatedAt() time.Time                { return r.createdAt }
func (r *VideoRecord) UpdatedAt() time.Time                { return r.updatedAt }

// HasOriginal 是否保存了原视频地址（重新翻译的前提）
func (r *VideoRecord) HasOriginal() bool { return r.originalURL != "" }

// ApplyRetranslation 覆盖翻译产物字段，id/原视频/用户/标题保持不变
func (r *VideoRecord) ApplyRetranslation(artifact *TranslatedArtifact, now time.Time) {
	r.translatedURL = artifact.TranslatedURL
	r.thumbnailURL = artifact.ThumbnailURL
	r.targetLang = artifact.TargetLanguage
	r.translationMode = artifact.Mode
	r.updatedAt = now
}
