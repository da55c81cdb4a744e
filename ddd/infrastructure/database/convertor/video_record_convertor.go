package convertor

import (
	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/ddd/infrastructure/database/po"
)

// VideoRecordConvertor videos 行与实体互转
type VideoRecordConvertor struct{}

func NewVideoRecordConvertor() *VideoRecordConvertor {
	return &VideoRecordConvertor{}
}

// ToEntity 将PO转换为Entity; 无法识别的模式按 voice 处理
func (c *VideoRecordConvertor) ToEntity(p *po.VideoRecord) *entity.VideoRecord {
	if p == nil {
		return nil
	}
	mode, err := vo.ParseTranslationMode(p.TranslationMode)
	if err != nil {
		mode = vo.TranslationModeVoice
	}
	return entity.RestoreVideoRecord(
		p.ID,
		p.OriginalURL,
		p.Title,
		p.UserID,
		p.TranslatedURL,
		p.ThumbnailURL,
		p.TargetLang,
		mode,
		p.CreatedAt,
		p.UpdatedAt,
	)
}

// ToPO 将Entity转换为PO
func (c *VideoRecordConvertor) ToPO(e *entity.VideoRecord) *po.VideoRecord {
	return &po.VideoRecord{
		ID:              e.ID(),
		OriginalURL:     e.OriginalURL(),
		Title:           e.Title(),
		UserID:          e.UserID(),
		TranslatedURL:   e.TranslatedURL(),
		ThumbnailURL:    e.ThumbnailURL(),
		TargetLang:      e.TargetLang(),
		TranslationMode: e.TranslationMode().String(),
		CreatedAt:       e.CreatedAt(),
		UpdatedAt:       e.UpdatedAt(),
	}
}
