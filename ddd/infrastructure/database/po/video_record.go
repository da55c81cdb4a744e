package po

import "time"

// VideoRecord videos 表持久化对象，MySQL 与 Supabase 共用同一列名
type VideoRecord struct {
	ID              string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	OriginalURL     string    `gorm:"column:original_url;type:varchar(1024)" json:"original_url"`
	Title           string    `gorm:"column:title;type:varchar(255)" json:"title"`
	UserID          string    `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	TranslatedURL   string    `gorm:"column:translated_url;type:varchar(1024)" json:"translated_url"`
	ThumbnailURL    string    `gorm:"column:thumbnail_url;type:varchar(1024)" json:"thumbnail_url"`
	TargetLang      string    `gorm:"column:target_lang;type:varchar(16)" json:"target_lang"`
	TranslationMode string    `gorm:"column:translation_mode;type:varchar(16)" json:"translation_mode"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (VideoRecord) TableName() string {
	return "videos"
}

// TranslationColumns 重新翻译时覆盖的列
func (v *VideoRecord) TranslationColumns() map[string]interface{} {
	return map[string]interface{}{
		"translated_url":   v.TranslatedURL,
		"thumbnail_url":    v.ThumbnailURL,
		"target_lang":      v.TargetLang,
		"translation_mode": v.TranslationMode,
		"updated_at":       v.UpdatedAt,
	}
}
