package dao

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"video-translate-service/ddd/infrastructure/database/po"
)

func newMockDAO(t *testing.T) (*VideoRecordDAO, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewVideoRecordDAO(gdb), mock
}

func sampleRecord() *po.VideoRecord {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &po.VideoRecord{
		ID:              "vid-1",
		OriginalURL:     "https://cdn.example.com/originals/a.mp4",
		Title:           "Demo",
		UserID:          "u1",
		TranslatedURL:   "https://cdn.example.com/translated/a_fr.mp4",
		ThumbnailURL:    "https://cdn.example.com/thumbnails/a.jpg",
		TargetLang:      "fr",
		TranslationMode: "voice",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestVideoRecordDAO_Create(t *testing.T) {
	d, mock := newMockDAO(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `videos`")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, d.Create(context.Background(), sampleRecord()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRecordDAO_FindByID(t *testing.T) {
	d, mock := newMockDAO(t)
	rec := sampleRecord()

	rows := sqlmock.NewRows([]string{"id", "original_url", "title", "user_id", "translated_url",
		"thumbnail_url", "target_lang", "translation_mode", "created_at", "updated_at"}).
		AddRow(rec.ID, rec.OriginalURL, rec.Title, rec.UserID, rec.TranslatedURL,
			rec.ThumbnailURL, rec.TargetLang, rec.TranslationMode, rec.CreatedAt, rec.UpdatedAt)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `videos` WHERE id = ?")).WillReturnRows(rows)

	got, err := d.FindByID(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, rec.OriginalURL, got.OriginalURL)
	assert.Equal(t, "voice", got.TranslationMode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRecordDAO_FindByID_NotFound(t *testing.T) {
	d, mock := newMockDAO(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `videos` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVideoRecordDAO_UpdateTranslation(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "no row", affected: 0, wantErr: gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDAO(t)
			mock.ExpectExec(regexp.QuoteMeta("UPDATE `videos` SET")).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := d.UpdateTranslation(context.Background(), sampleRecord())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
