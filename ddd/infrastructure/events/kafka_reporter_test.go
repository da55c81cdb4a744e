package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/vo"
)

type recordedMessage struct {
	topic string
	key   string
	value []byte
}

type fakeProducer struct {
	msgs []recordedMessage
	err  error
}

func (f *fakeProducer) Produce(_ context.Context, topic string, key, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, recordedMessage{topic: topic, key: string(key), value: value})
	return nil
}

func TestKafkaReporter(t *testing.T) {
	p := &fakeProducer{}
	r := NewKafkaReporter(p, "video.translate.events").(*kafkaReporter)
	fixed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, r.ReportSuccess(ctx, "job-1", &entity.TranslatedArtifact{
		VideoID:        "vid-1",
		Mode:           vo.TranslationModeSubtitle,
		TranslatedURL:  "https://cdn/t.mp4",
		ThumbnailURL:   "https://cdn/t.jpg",
		TargetLanguage: "ar",
		OriginalURL:    "https://cdn/o.mp4",
	}))
	require.NoError(t, r.ReportFailure(ctx, "job-2", "media processing failed"))

	require.Len(t, p.msgs, 2)
	assert.Equal(t, "video.translate.events", p.msgs[0].topic)
	assert.Equal(t, "job-1", p.msgs[0].key)

	var ok TranslationEvent
	require.NoError(t, json.Unmarshal(p.msgs[0].value, &ok))
	assert.Equal(t, EventCompleted, ok.Status)
	assert.Equal(t, "subtitle", ok.TranslationMode)
	assert.Equal(t, "ar", ok.TargetLang)
	assert.True(t, fixed.Equal(ok.OccurredAt))

	var failed TranslationEvent
	require.NoError(t, json.Unmarshal(p.msgs[1].value, &failed))
	assert.Equal(t, EventFailed, failed.Status)
	assert.Equal(t, "media processing failed", failed.Error)
	assert.Empty(t, failed.TranslatedURL)
}

func TestKafkaReporter_ProduceError(t *testing.T) {
	r := NewKafkaReporter(&fakeProducer{err: errors.New("broker down")}, "events")
	err := r.ReportFailure(context.Background(), "job", "x")
	assert.ErrorContains(t, err, "broker down")
}
