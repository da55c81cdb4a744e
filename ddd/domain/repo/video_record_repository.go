package repo

import (
	"context"

	"video-translate-service/ddd/domain/entity"
)

// VideoRecordRepository videos 表仓储接口
type VideoRecordRepository interface {
	// Create 插入新记录
	Create(ctx context.Context, record *entity.VideoRecord) error
	// GetByID 按ID查询，不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.VideoRecord, error)
	// UpdateTranslation 覆盖翻译产物字段与更新时间
	UpdateTranslation(ctx context.Context, record *entity.VideoRecord) error
}
