package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/port"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/workspace"
)

func newTestWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(t.TempDir(), "test")
	require.NoError(t, err)
	t.Cleanup(ws.Cleanup)
	return ws
}

type fakeFetcher struct {
	fetch func(ctx context.Context, rawURL, destPath string) error
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL, destPath string) error {
	if f.fetch == nil {
		return os.WriteFile(destPath, []byte("remote"), 0o644)
	}
	return f.fetch(ctx, rawURL, destPath)
}

type fakeMedia struct {
	mu         sync.Mutex
	info       vo.MediaInfo
	probeErr   error
	composeErr error
	frameErr   error
	layers     []entity.CaptionLayer
	calls      []string
}

func (m *fakeMedia) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *fakeMedia) Probe(ctx context.Context, path string) (*vo.MediaInfo, error) {
	m.record("probe")
	if m.probeErr != nil {
		return nil, m.probeErr
	}
	info := m.info
	return &info, nil
}

func (m *fakeMedia) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	m.record("extract_audio")
	return os.WriteFile(audioPath, []byte("wav"), 0o644)
}

func (m *fakeMedia) ReplaceAudio(ctx context.Context, videoPath, audioPath, outPath string, progress port.ProgressCallback) error {
	m.record("replace_audio")
	if m.composeErr != nil {
		return m.composeErr
	}
	if progress != nil {
		progress(50)
		progress(100)
	}
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

func (m *fakeMedia) OverlayCaptions(ctx context.Context, videoPath string, layers []entity.CaptionLayer, outPath string, progress port.ProgressCallback) error {
	m.record("overlay_captions")
	m.layers = layers
	if m.composeErr != nil {
		return m.composeErr
	}
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

func (m *fakeMedia) ExtractFrame(ctx context.Context, videoPath string, offsetSeconds float64, outPath string) error {
	m.record("extract_frame")
	if m.frameErr != nil {
		return m.frameErr
	}
	return os.WriteFile(outPath, []byte("jpg"), 0o644)
}

type fakeRecognizer struct {
	transcript *entity.Transcript
	err        error
	calls      int
}

func (r *fakeRecognizer) Transcribe(ctx context.Context, audioPath, workDir string) (*entity.Transcript, error) {
	r.calls++
	return r.transcript, r.err
}

type fakeTranslator struct {
	translate func(text, lang string) (string, error)
}

func (t *fakeTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if t.translate == nil {
		return "[" + targetLang + "] " + text, nil
	}
	return t.translate(text, targetLang)
}

type fakeTTS struct {
	err  error
	text string
}

func (s *fakeTTS) Synthesize(ctx context.Context, text, lang, outPath string) error {
	s.text = text
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(outPath, []byte("mp3"), 0o644)
}

type fakeRenderer struct {
	err     error
	texts   []string
	heights []int
}

func (r *fakeRenderer) Render(text string, videoWidth, videoHeight int, outPath string) (int, int, error) {
	r.texts = append(r.texts, text)
	r.heights = append(r.heights, videoHeight)
	if r.err != nil {
		return 0, 0, r.err
	}
	return videoWidth / 2, 60, os.WriteFile(outPath, []byte("png"), 0o644)
}

type fakeStorage struct {
	mu        sync.Mutex
	uploads   map[string]string
	removed   []string
	uploadErr func(key string) error
	urlResult func(key string) vo.PublishResult
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string]string{}}
}

func (s *fakeStorage) Upload(ctx context.Context, localPath, objectKey, contentType string) error {
	if s.uploadErr != nil {
		if err := s.uploadErr(objectKey); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[objectKey] = contentType
	return nil
}

func (s *fakeStorage) PublicURL(ctx context.Context, objectKey string) vo.PublishResult {
	if s.urlResult != nil {
		return s.urlResult(objectKey)
	}
	return vo.PublicOK("https://cdn.example.com/" + objectKey)
}

func (s *fakeStorage) SignedURL(ctx context.Context, objectKey string, ttl time.Duration) vo.PublishResult {
	if s.urlResult != nil {
		return s.urlResult(objectKey)
	}
	return vo.SignedOK("https://cdn.example.com/"+objectKey+"?token=x", time.Now().Add(ttl))
}

func (s *fakeStorage) Remove(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, objectKey)
	delete(s.uploads, objectKey)
	return nil
}

type fakeRepo struct {
	records   map[string]*entity.VideoRecord
	createErr error
	updates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*entity.VideoRecord{}}
}

func (r *fakeRepo) Create(ctx context.Context, record *entity.VideoRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.records[record.ID()] = record
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*entity.VideoRecord, error) {
	return r.records[id], nil
}

func (r *fakeRepo) UpdateTranslation(ctx context.Context, record *entity.VideoRecord) error {
	if _, ok := r.records[record.ID()]; !ok {
		return errors.New("no rows")
	}
	r.updates++
	r.records[record.ID()] = record
	return nil
}

type fakeTranscriptCache struct {
	items map[string]*entity.Transcript
}

func (c *fakeTranscriptCache) Get(ctx context.Context, videoID string) (*entity.Transcript, error) {
	return c.items[videoID], nil
}

func (c *fakeTranscriptCache) Put(ctx context.Context, videoID string, t *entity.Transcript) error {
	c.items[videoID] = t
	return nil
}

type fakeProgress struct {
	mu       sync.Mutex
	statuses []vo.JobStatus
	result   *entity.TranslatedArtifact
}

func (p *fakeProgress) SaveProgress(ctx context.Context, jobID string, status vo.JobStatus, progress int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.statuses); n == 0 || p.statuses[n-1] != status {
		p.statuses = append(p.statuses, status)
	}
}

func (p *fakeProgress) SaveResult(ctx context.Context, jobID string, artifact *entity.TranslatedArtifact) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, vo.JobStatusCompleted)
	p.result = artifact
}

type fakeReporter struct {
	successes int
	failures  []string
}

func (r *fakeReporter) ReportSuccess(ctx context.Context, jobID string, artifact *entity.TranslatedArtifact) error {
	r.successes++
	return nil
}

func (r *fakeReporter) ReportFailure(ctx context.Context, jobID, reason string) error {
	r.failures = append(r.failures, reason)
	return errors.New("broker down")
}
