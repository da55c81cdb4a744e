package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/repo"
	"video-translate-service/ddd/infrastructure/database/convertor"
	"video-translate-service/ddd/infrastructure/database/dao"
)

type videoRecordRepositoryImpl struct {
	videoDao  *dao.VideoRecordDAO
	convertor *convertor.VideoRecordConvertor
}

// NewVideoRecordRepository MySQL 实现
func NewVideoRecordRepository(db *gorm.DB) repo.VideoRecordRepository {
	return &videoRecordRepositoryImpl{
		videoDao:  dao.NewVideoRecordDAO(db),
		convertor: convertor.NewVideoRecordConvertor(),
	}
}

func (r *videoRecordRepositoryImpl) Create(ctx context.Context, record *entity.VideoRecord) error {
	return r.videoDao.Create(ctx, r.convertor.ToPO(record))
}

func (r *videoRecordRepositoryImpl) GetByID(ctx context.Context, id string) (*entity.VideoRecord, error) {
	p, err := r.videoDao.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.convertor.ToEntity(p), nil
}

func (r *videoRecordRepositoryImpl) UpdateTranslation(ctx context.Context, record *entity.VideoRecord) error {
	return r.videoDao.UpdateTranslation(ctx, r.convertor.ToPO(record))
}
