package gateway

import (
	"context"

	"video-translate-service/ddd/domain/entity"
)

// JobStatusStore 作业状态存储，找不到时返回 nil, nil
type JobStatusStore interface {
	Save(ctx context.Context, progress *entity.JobProgress) error
	Get(ctx context.Context, jobID string) (*entity.JobProgress, error)
}

// TranscriptCache 以视频记录ID缓存转写结果，供重新翻译复用
type TranscriptCache interface {
	Get(ctx context.Context, videoID string) (*entity.Transcript, error)
	Put(ctx context.Context, videoID string, transcript *entity.Transcript) error
}
