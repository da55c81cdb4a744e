package progress

import (
	"context"
	"time"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/port"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/logger"
)

// StoreSink 把流水线的阶段更新写入 JobStatusStore; 写入失败只记录日志
type StoreSink struct {
	store gateway.JobStatusStore
	now   func() time.Time
}

func NewStoreSink(store gateway.JobStatusStore) *StoreSink {
	return &StoreSink{store: store, now: time.Now}
}

var _ port.ProgressSink = (*StoreSink)(nil)

func (s *StoreSink) SaveProgress(ctx context.Context, jobID string, status vo.JobStatus, progress int, message string) {
	s.save(ctx, &entity.JobProgress{
		JobID:     jobID,
		Status:    status,
		Progress:  clamp(progress),
		Message:   message,
		UpdatedAt: s.now().UTC(),
	})
}

func (s *StoreSink) SaveResult(ctx context.Context, jobID string, artifact *entity.TranslatedArtifact) {
	s.save(ctx, &entity.JobProgress{
		JobID:     jobID,
		Status:    vo.JobStatusCompleted,
		Progress:  100,
		Result:    artifact,
		UpdatedAt: s.now().UTC(),
	})
}

func (s *StoreSink) save(ctx context.Context, p *entity.JobProgress) {
	if err := s.store.Save(ctx, p); err != nil {
		logger.Warn("Failed to save job progress", map[string]interface{}{
			"job_id": p.JobID,
			"status": p.Status.String(),
			"error":  err.Error(),
		})
	}
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
