package dao

import (
	"context"

	"gorm.io/gorm"

	"video-translate-service/ddd/infrastructure/database/po"
)

type VideoRecordDAO struct {
	db *gorm.DB
}

func NewVideoRecordDAO(db *gorm.DB) *VideoRecordDAO {
	return &VideoRecordDAO{db: db}
}

func (d *VideoRecordDAO) Create(ctx context.Context, record *po.VideoRecord) error {
	return d.db.WithContext(ctx).Create(record).Error
}

// FindByID 不存在时返回 gorm.ErrRecordNotFound
func (d *VideoRecordDAO) FindByID(ctx context.Context, id string) (*po.VideoRecord, error) {
	var record po.VideoRecord
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateTranslation 只更新翻译产物相关列，未命中任何行时返回 gorm.ErrRecordNotFound
func (d *VideoRecordDAO) UpdateTranslation(ctx context.Context, record *po.VideoRecord) error {
	res := d.db.WithContext(ctx).Model(&po.VideoRecord{}).Where("id = ?", record.ID).Updates(record.TranslationColumns())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
