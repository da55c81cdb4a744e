package port

import (
	"context"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/vo"
)

// ProgressCallback is invoked by executors to report percentage progress (0-100).
type ProgressCallback func(progress int)

// ProgressSink persists or forwards job stage updates. Implementations must not block the pipeline on failure.
type ProgressSink interface {
	SaveProgress(ctx context.Context, jobID string, status vo.JobStatus, progress int, message string)
	// SaveResult 记录终态成功及产物
	SaveResult(ctx context.Context, jobID string, artifact *entity.TranslatedArtifact)
}
