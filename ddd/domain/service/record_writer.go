package service

import (
	"context"
	"errors"
	"time"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/repo"
	"video-translate-service/pkg/errno"
)

// JobRecordWriter 维护 videos 表中的作业记录
type JobRecordWriter interface {
	// Insert 首次翻译成功后插入新记录
	Insert(ctx context.Context, job *entity.TranslationJob, artifact *entity.TranslatedArtifact) (*entity.VideoRecord, error)
	// LoadForRetranslation 读取记录并校验可以重新翻译
	LoadForRetranslation(ctx context.Context, videoID string) (*entity.VideoRecord, error)
	// UpdateForRetranslation 覆盖已有记录的翻译产物
	UpdateForRetranslation(ctx context.Context, videoID string, artifact *entity.TranslatedArtifact) (*entity.VideoRecord, error)
}

type jobRecordWriterImpl struct {
	repo repo.VideoRecordRepository
	now  func() time.Time
}

func NewJobRecordWriter(r repo.VideoRecordRepository) JobRecordWriter {
	return &jobRecordWriterImpl{
		repo: r,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (w *jobRecordWriterImpl) Insert(ctx context.Context, job *entity.TranslationJob, artifact *entity.TranslatedArtifact) (*entity.VideoRecord, error) {
	record := entity.NewVideoRecord(job, artifact)
	if err := w.repo.Create(ctx, record); err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return record, nil
}

func (w *jobRecordWriterImpl) LoadForRetranslation(ctx context.Context, videoID string) (*entity.VideoRecord, error) {
	if videoID == "" {
		return nil, errno.NewBizError(errno.ErrVideoIDRequired, nil)
	}
	record, err := w.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if record == nil {
		return nil, errno.NewBizError(errno.ErrRecordNotFound, nil)
	}
	if !record.HasOriginal() {
		return nil, errno.NewBizError(errno.ErrInvalidState, errors.New("record has no original video"))
	}
	return record, nil
}

func (w *jobRecordWriterImpl) UpdateForRetranslation(ctx context.Context, videoID string, artifact *entity.TranslatedArtifact) (*entity.VideoRecord, error) {
	record, err := w.LoadForRetranslation(ctx, videoID)
	if err != nil {
		return nil, err
	}
	record.ApplyRetranslation(artifact, w.now())
	if err := w.repo.UpdateTranslation(ctx, record); err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return record, nil
}
