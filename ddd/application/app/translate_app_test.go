package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-translate-service/ddd/application/cqe"
	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/ddd/infrastructure/progress"
	"video-translate-service/ddd/infrastructure/queue"
	"video-translate-service/pkg/errno"
)

type fakePipeline struct {
	translate func(ctx context.Context, job *entity.TranslationJob) (*entity.TranslatedArtifact, error)
	prepare   func(videoID, lang string, mode vo.TranslationMode) (*entity.TranslationJob, error)
}

func (f *fakePipeline) Translate(ctx context.Context, job *entity.TranslationJob) (*entity.TranslatedArtifact, error) {
	return f.translate(ctx, job)
}

func (f *fakePipeline) Retranslate(ctx context.Context, videoID, lang string, mode vo.TranslationMode) (*entity.TranslatedArtifact, error) {
	job, err := f.PrepareRetranslation(ctx, videoID, lang, mode)
	if err != nil {
		return nil, err
	}
	return f.translate(ctx, job)
}

func (f *fakePipeline) PrepareRetranslation(_ context.Context, videoID, lang string, mode vo.TranslationMode) (*entity.TranslationJob, error) {
	return f.prepare(videoID, lang, mode)
}

func okArtifact(job *entity.TranslationJob) *entity.TranslatedArtifact {
	return &entity.TranslatedArtifact{
		VideoID:        "vid-1",
		Mode:           job.Mode(),
		TranslatedURL:  "https://cdn/t.mp4",
		ThumbnailURL:   "https://cdn/t.jpg",
		TargetLanguage: job.TargetLang(),
		OriginalURL:    job.OriginalURL(),
	}
}

type harness struct {
	app   TranslateApp
	queue *queue.MemoryJobQueue
	store *progress.MemoryStore
}

func newHarness(t *testing.T, p *fakePipeline, capacity int) *harness {
	t.Helper()
	q := queue.NewMemoryJobQueue(capacity)
	store := progress.NewMemoryStore(time.Hour)
	a := NewTranslateApp(TranslateAppDeps{
		Pipeline:    p,
		Queue:       q,
		Status:      store,
		Progress:    progress.NewStoreSink(store),
		DefaultLang: "fr",
	})
	return &harness{app: a, queue: q, store: store}
}

// runOne 模拟工作池取出并执行一个作业
func (h *harness) runOne(t *testing.T) *entity.TranslationJob {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job, err := h.queue.Dequeue(ctx)
	if err != nil {
		t.Errorf("dequeue: %v", err)
		return nil
	}
	_ = h.app.HandleJob(context.Background(), job)
	return job
}

func TestTranslateVideo_WaitsForWorker(t *testing.T) {
	h := newHarness(t, &fakePipeline{translate: func(_ context.Context, job *entity.TranslationJob) (*entity.TranslatedArtifact, error) {
		return okArtifact(job), nil
	}}, 4)

	go h.runOne(t)
	res, err := h.app.TranslateVideo(context.Background(), &cqe.TranslateVideoReq{
		OriginalURL:     "https://example.com/a.mp4",
		TranslationMode: "subtitle",
	})
	require.NoError(t, err)
	assert.Equal(t, "subtitle", res.TranslationMode)
	assert.Equal(t, "fr", res.TargetLang)
	assert.Equal(t, "https://example.com/a.mp4", res.OriginalURL)
	assert.Equal(t, "vid-1", res.VideoID)
}

func TestTranslateVideo_PipelineErrorReturned(t *testing.T) {
	h := newHarness(t, &fakePipeline{translate: func(context.Context, *entity.TranslationJob) (*entity.TranslatedArtifact, error) {
		return nil, errno.NewBizError(errno.ErrTranscription, errors.New("whisper crashed"))
	}}, 4)

	go h.runOne(t)
	_, err := h.app.TranslateVideo(context.Background(), &cqe.TranslateVideoReq{OriginalURL: "https://example.com/a.mp4"})
	assert.ErrorIs(t, err, errno.ErrTranscription)
}

func TestTranslateVideo_TimeoutLeavesJobRunning(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, &fakePipeline{translate: func(_ context.Context, job *entity.TranslationJob) (*entity.TranslatedArtifact, error) {
		<-release
		return okArtifact(job), nil
	}}, 4)

	done := make(chan struct{})
	go func() {
		h.runOne(t)
		close(done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.app.TranslateVideo(ctx, &cqe.TranslateVideoReq{OriginalURL: "https://example.com/a.mp4"})
	assert.ErrorIs(t, err, errno.ErrJobTimeout)

	close(release)
	<-done
}

func TestTranslateVideo_ValidationRemovesUpload(t *testing.T) {
	h := newHarness(t, &fakePipeline{}, 1)
	upload := filepath.Join(t.TempDir(), "u.mp4")
	require.NoError(t, os.WriteFile(upload, []byte("x"), 0o644))

	_, err := h.app.TranslateVideo(context.Background(), &cqe.TranslateVideoReq{
		LocalPath:       upload,
		TempUpload:      true,
		TranslationMode: "bogus",
	})
	assert.ErrorIs(t, err, errno.ErrInvalidMode)
	_, statErr := os.Stat(upload)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSubmitTranslateVideo_StatusLifecycle(t *testing.T) {
	h := newHarness(t, &fakePipeline{translate: func(_ context.Context, job *entity.TranslationJob) (*entity.TranslatedArtifact, error) {
		return okArtifact(job), nil
	}}, 4)
	upload := filepath.Join(t.TempDir(), "u.mp4")
	require.NoError(t, os.WriteFile(upload, []byte("x"), 0o644))

	accepted, err := h.app.SubmitTranslateVideo(context.Background(), &cqe.TranslateVideoReq{LocalPath: upload, TempUpload: true})
	require.NoError(t, err)
	assert.Equal(t, "queued", accepted.Status)

	st, err := h.app.GetJobStatus(context.Background(), accepted.JobID)
	require.NoError(t, err)
	assert.Equal(t, "queued", st.Status)

	// 完成态由流水线写入，fake 不写，这里手动补上
	job := h.runOne(t)
	require.NotNil(t, job)
	progress.NewStoreSink(h.store).SaveResult(context.Background(), job.JobID(), okArtifact(job))

	st, err = h.app.GetJobStatus(context.Background(), accepted.JobID)
	require.NoError(t, err)
	assert.Equal(t, "completed", st.Status)
	require.NotNil(t, st.Result)
	assert.Equal(t, "https://cdn/t.mp4", st.Result.TranslatedURL)

	_, statErr := os.Stat(upload)
	assert.True(t, os.IsNotExist(statErr), "upload removed after the job finished")
}

func TestSubmit_QueueFull(t *testing.T) {
	h := newHarness(t, &fakePipeline{}, 1)
	req := &cqe.TranslateVideoReq{OriginalURL: "https://example.com/a.mp4"}

	_, err := h.app.SubmitTranslateVideo(context.Background(), req)
	require.NoError(t, err)
	_, err = h.app.SubmitTranslateVideo(context.Background(), req)
	assert.ErrorIs(t, err, errno.ErrQueueFull)
	assert.Equal(t, 503, errno.HTTPStatus(err))
}

func TestAbandonJob_FailsWaiter(t *testing.T) {
	h := newHarness(t, &fakePipeline{}, 2)

	errCh := make(chan error, 1)
	go func() {
		_, err := h.app.TranslateVideo(context.Background(), &cqe.TranslateVideoReq{OriginalURL: "https://example.com/a.mp4"})
		errCh <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job, err := h.queue.Dequeue(ctx)
	require.NoError(t, err)
	h.app.AbandonJob(job)

	assert.ErrorIs(t, <-errCh, errno.ErrInternalServer)
	st, err := h.app.GetJobStatus(context.Background(), job.JobID())
	require.NoError(t, err)
	assert.Equal(t, "failed", st.Status)
}

func TestHandleJob_PanicFailsWaiter(t *testing.T) {
	h := newHarness(t, &fakePipeline{translate: func(context.Context, *entity.TranslationJob) (*entity.TranslatedArtifact, error) {
		panic("nil artifact")
	}}, 2)
	uploadDir := filepath.Join(t.TempDir(), "upload-1")
	require.NoError(t, os.MkdirAll(uploadDir, 0o755))
	upload := filepath.Join(uploadDir, "u.mp4")
	require.NoError(t, os.WriteFile(upload, []byte("x"), 0o644))

	errCh := make(chan error, 1)
	go func() {
		_, err := h.app.TranslateVideo(context.Background(), &cqe.TranslateVideoReq{LocalPath: upload, TempUpload: true})
		errCh <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job, err := h.queue.Dequeue(ctx)
	require.NoError(t, err)
	var handleErr error
	require.NotPanics(t, func() { handleErr = h.app.HandleJob(context.Background(), job) })
	assert.ErrorIs(t, handleErr, errno.ErrInternalServer)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, errno.ErrInternalServer)
		assert.Equal(t, 500, errno.HTTPStatus(err))
	case <-time.After(time.Second):
		t.Fatal("waiter was never released")
	}
	st, err := h.app.GetJobStatus(context.Background(), job.JobID())
	require.NoError(t, err)
	assert.Equal(t, "failed", st.Status)
	_, statErr := os.Stat(uploadDir)
	assert.True(t, os.IsNotExist(statErr), "upload directory removed")
}

func TestRetranslate(t *testing.T) {
	record := entity.RestoreVideoRecord("vid-9", "https://cdn/o.mp4", "T", "u", "", "", "fr",
		vo.TranslationModeVoice, time.Now(), time.Now())
	h := newHarness(t, &fakePipeline{
		prepare: func(videoID, lang string, mode vo.TranslationMode) (*entity.TranslationJob, error) {
			if videoID != "vid-9" {
				return nil, errno.ErrRecordNotFound
			}
			return entity.NewRetranslationJob(record, lang, mode), nil
		},
		translate: func(_ context.Context, job *entity.TranslationJob) (*entity.TranslatedArtifact, error) {
			a := okArtifact(job)
			a.VideoID = job.VideoID()
			return a, nil
		},
	}, 2)

	_, err := h.app.Retranslate(context.Background(), &cqe.RetranslateVideoReq{VideoID: "nope"})
	assert.ErrorIs(t, err, errno.ErrRecordNotFound)

	go h.runOne(t)
	res, err := h.app.Retranslate(context.Background(), &cqe.RetranslateVideoReq{VideoID: "vid-9", TargetLang: "ja"})
	require.NoError(t, err)
	assert.Equal(t, "vid-9", res.VideoID)
	assert.Equal(t, "ja", res.TargetLang)
	assert.Equal(t, "https://cdn/o.mp4", res.OriginalURL)

	accepted, err := h.app.SubmitRetranslate(context.Background(), &cqe.RetranslateVideoReq{VideoID: "vid-9"})
	require.NoError(t, err)
	assert.NotEmpty(t, accepted.JobID)
}

func TestGetJobStatus_Errors(t *testing.T) {
	h := newHarness(t, &fakePipeline{}, 1)
	_, err := h.app.GetJobStatus(context.Background(), "unknown")
	assert.ErrorIs(t, err, errno.ErrJobNotFound)

	noStatus := NewTranslateApp(TranslateAppDeps{Pipeline: &fakePipeline{}, Queue: queue.NewMemoryJobQueue(1)})
	_, err = noStatus.GetJobStatus(context.Background(), "x")
	assert.ErrorIs(t, err, errno.ErrStatusTrackingOff)
}
