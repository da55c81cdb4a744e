package vo

// JobStatus 翻译作业状态
type JobStatus string

const (
	JobStatusQueued       JobStatus = "queued"
	JobStatusResolving    JobStatus = "resolving"
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusTranslating  JobStatus = "translating"
	JobStatusSynthesizing JobStatus = "synthesizing"
	JobStatusComposing    JobStatus = "composing"
	JobStatusPublishing   JobStatus = "publishing"
	JobStatusSaving       JobStatus = "saving"
	JobStatusCompleted    JobStatus = "completed"
	JobStatusFailed       JobStatus = "failed"
)

// stageProgress 每个阶段开始时的大致进度
var stageProgress = map[JobStatus]int{
	JobStatusQueued:       0,
	JobStatusResolving:    5,
	JobStatusTranscribing: 10,
	JobStatusTranslating:  35,
	JobStatusSynthesizing: 45,
	JobStatusComposing:    60,
	JobStatusPublishing:   85,
	JobStatusSaving:       95,
	JobStatusCompleted:    100,
	JobStatusFailed:       100,
}

// IsValid 检查状态是否有效
func (s JobStatus) IsValid() bool {
	_, ok := stageProgress[s]
	return ok
}

// String 返回状态字符串
func (s JobStatus) String() string {
	return string(s)
}

// IsFinalStatus 检查是否为最终状态
func (s JobStatus) IsFinalStatus() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// BaseProgress 阶段起始进度百分比
func (s JobStatus) BaseProgress() int {
	return stageProgress[s]
}
