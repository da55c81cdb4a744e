package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"video-translate-service/ddd/domain/vo"
)

const (
	DefaultOwnerID = "anonymous"
	DefaultTitle   = "Untitled"
)

// TranslationJob 一次翻译作业，作业结束后只保留存储URL和数据库记录
type TranslationJob struct {
	jobID       string             // 作业ID
	videoID     string             // 重新翻译时对应的记录ID
	source      vo.MediaSource     // 视频来源
	targetLang  string             // 目标语言
	mode        vo.TranslationMode // 翻译模式
	ownerID     string             // 用户ID
	title       string             // 标题
	originalURL string             // 原视频的持久化地址
	createdAt   time.Time          // 创建时间
}

// NewTranslationJob 创建首次翻译作业
func NewTranslationJob(source vo.MediaSource, targetLang string, mode vo.TranslationMode, ownerID, title string) *TranslationJob {
	job := &TranslationJob{
		jobID:      uuid.NewString(),
		source:     source,
		targetLang: strings.TrimSpace(targetLang),
		mode:       mode,
		ownerID:    orDefault(ownerID, DefaultOwnerID),
		title:      orDefault(title, DefaultTitle),
		createdAt:  time.Now(),
	}
	if source.IsRemote() {
		job.originalURL = strings.TrimSpace(source.RemoteURL)
	}
	return job
}

// NewRetranslationJob 基于已有记录创建重新翻译作业，来源为记录中的原视频地址
func NewRetranslationJob(record *VideoRecord, targetLang string, mode vo.TranslationMode) *TranslationJob {
	return &TranslationJob{
		jobID:       uuid.NewString(),
		videoID:     record.ID(),
		source:      vo.MediaSource{RemoteURL: record.OriginalURL()},
		targetLang:  strings.TrimSpace(targetLang),
		mode:        mode,
		ownerID:     record.UserID(),
		title:       record.Title(),
		originalURL: record.OriginalURL(),
		createdAt:   time.Now(),
	}
}

// Getters
func (j *TranslationJob) JobID() string                { return j.jobID }
func (j *TranslationJob) VideoID() string              { return j.videoID }
func (j *TranslationJob) Source() vo.MediaSource       { return j.source }
func (j *TranslationJob) TargetLang() string           { return j.targetLang }
func (j *TranslationJob) Mode() vo.TranslationMode     { return j.mode }
func (j *TranslationJob) OwnerID() string              { return j.ownerID }
func (j *TranslationJob) Title() string                { return j.title }
func (j *TranslationJob) OriginalURL() string          { return j.originalURL }
func (j *TranslationJob) CreatedAt() time.Time         { return j.createdAt }
func (j *TranslationJob) IsRetranslation() bool        { return j.videoID != "" }
func (j *TranslationJob) NeedsOriginalPublished() bool { return j.originalURL == "" }

// SetOriginalURL 原视频上传后回填地址
func (j *TranslationJob) SetOriginalURL(u string) {
	j.originalURL = u
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
