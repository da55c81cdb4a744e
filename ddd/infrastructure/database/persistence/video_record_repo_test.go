package persistence

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/postgrest-go"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/vo"
)

func newRecord() *entity.VideoRecord {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return entity.RestoreVideoRecord("vid-1", "https://cdn.example.com/originals/a.mp4", "Demo", "u1",
		"https://cdn.example.com/translated/a_fr.mp4", "https://cdn.example.com/thumbnails/a.jpg",
		"fr", vo.TranslationModeSubtitle, now, now)
}

func TestVideoRecordRepository_GetByID_NotFoundIsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `videos`")).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := NewVideoRecordRepository(gdb).GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

// fakePostgrest 记录请求并返回预设的 JSON
type fakePostgrest struct {
	method string
	query  string
	body   map[string]interface{}
	reply  string
}

func (f *fakePostgrest) handler(w http.ResponseWriter, r *http.Request) {
	f.method = r.Method
	f.query = r.URL.RawQuery
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &f.body)
	}
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodPost {
		w.WriteHeader(http.StatusCreated)
	}
	_, _ = io.WriteString(w, f.reply)
}

func newSupabaseRepo(t *testing.T, f *fakePostgrest) *supabaseVideoRepository {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	client := postgrest.NewClient(srv.URL, "public", nil)
	return NewSupabaseVideoRepository(client, "videos").(*supabaseVideoRepository)
}

func TestSupabaseVideoRepository_Create(t *testing.T) {
	f := &fakePostgrest{}
	r := newSupabaseRepo(t, f)

	require.NoError(t, r.Create(context.Background(), newRecord()))
	assert.Equal(t, http.MethodPost, f.method)
	assert.Equal(t, "vid-1", f.body["id"])
	assert.Equal(t, "subtitle", f.body["translation_mode"])
	assert.Equal(t, "https://cdn.example.com/originals/a.mp4", f.body["original_url"])
}

func TestSupabaseVideoRepository_GetByID(t *testing.T) {
	f := &fakePostgrest{reply: `[{"id":"vid-1","original_url":"https://x/o.mp4","title":"T","user_id":"u",
		"translated_url":"https://x/t.mp4","thumbnail_url":"https://x/t.jpg","target_lang":"es",
		"translation_mode":"voice","created_at":"2024-05-01T12:00:00+00:00","updated_at":"2024-05-01T12:00:00+00:00"}]`}
	r := newSupabaseRepo(t, f)

	got, err := r.GetByID(context.Background(), "vid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, f.method)
	assert.Contains(t, f.query, "id=eq.vid-1")
	assert.Equal(t, "https://x/o.mp4", got.OriginalURL())
	assert.Equal(t, vo.TranslationModeVoice, got.TranslationMode())
	assert.True(t, got.HasOriginal())
}

func TestSupabaseVideoRepository_GetByID_Empty(t *testing.T) {
	r := newSupabaseRepo(t, &fakePostgrest{reply: `[]`})

	got, err := r.GetByID(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSupabaseVideoRepository_UpdateTranslation(t *testing.T) {
	f := &fakePostgrest{reply: `[{"id":"vid-1"}]`}
	r := newSupabaseRepo(t, f)

	require.NoError(t, r.UpdateTranslation(context.Background(), newRecord()))
	assert.Equal(t, http.MethodPatch, f.method)
	assert.Equal(t, "fr", f.body["target_lang"])
	assert.NotContains(t, f.body, "original_url")

	missing := newSupabaseRepo(t, &fakePostgrest{reply: `[]`})
	assert.ErrorIs(t, missing.UpdateTranslation(context.Background(), newRecord()), ErrNoRowsUpdated)
}
