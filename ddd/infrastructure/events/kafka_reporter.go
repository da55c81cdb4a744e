package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/gateway"
)

const (
	EventCompleted = "completed"
	EventFailed    = "failed"
)

// TranslationEvent 作业结束事件，key 为 job_id
type TranslationEvent struct {
	JobID           string    `json:"job_id"`
	Status          string    `json:"status"`
	VideoID         string    `json:"video_id,omitempty"`
	TranslatedURL   string    `json:"translated_url,omitempty"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	TargetLang      string    `json:"target_lang,omitempty"`
	TranslationMode string    `json:"translation_mode,omitempty"`
	OriginalURL     string    `json:"original_url,omitempty"`
	Error           string    `json:"error,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Producer *kafka.Client 满足该接口
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

type kafkaReporter struct {
	producer Producer
	topic    string
	now      func() time.Time
}

// NewKafkaReporter 把作业结果发布到 topic
func NewKafkaReporter(producer Producer, topic string) gateway.TranslationResultReporter {
	return &kafkaReporter{producer: producer, topic: topic, now: time.Now}
}

func (r *kafkaReporter) ReportSuccess(ctx context.Context, jobID string, artifact *entity.TranslatedArtifact) error {
	evt := TranslationEvent{
		JobID:      jobID,
		Status:     EventCompleted,
		OccurredAt: r.now().UTC(),
	}
	if artifact != nil {
		evt.VideoID = artifact.VideoID
		evt.TranslatedURL = artifact.TranslatedURL
		evt.ThumbnailURL = artifact.ThumbnailURL
		evt.TargetLang = artifact.TargetLanguage
		evt.TranslationMode = artifact.Mode.String()
		evt.OriginalURL = artifact.OriginalURL
	}
	return r.publish(ctx, evt)
}

func (r *kafkaReporter) ReportFailure(ctx context.Context, jobID, reason string) error {
	return r.publish(ctx, TranslationEvent{
		JobID:      jobID,
		Status:     EventFailed,
		Error:      reason,
		OccurredAt: r.now().UTC(),
	})
}

func (r *kafkaReporter) publish(ctx context.Context, evt TranslationEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal translation event: %w", err)
	}
	if err := r.producer.Produce(ctx, r.topic, []byte(evt.JobID), data); err != nil {
		return fmt.Errorf("produce %s event to %s: %w", evt.Status, r.topic, err)
	}
	return nil
}
