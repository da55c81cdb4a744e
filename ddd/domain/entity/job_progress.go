package entity

import (
	"time"

	"video-translate-service/ddd/domain/vo"
)

// JobProgress 异步作业的状态快照
type JobProgress struct {
	JobID     string              `json:"job_id"`
	Status    vo.JobStatus        `json:"status"`
	Progress  int                 `json:"progress"`
	Message   string              `json:"message,omitempty"`
	Result    *TranslatedArtifact `json:"result,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}
