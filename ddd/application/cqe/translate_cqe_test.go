package cqe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/errno"
)

func TestTranslateVideoReq_ToJob(t *testing.T) {
	tests := []struct {
		name     string
		req      TranslateVideoReq
		wantErr  error
		wantLang string
		wantMode vo.TranslationMode
	}{
		{
			name:     "url with defaults",
			req:      TranslateVideoReq{OriginalURL: "https://example.com/a.mp4"},
			wantLang: "fr",
			wantMode: vo.TranslationModeVoice,
		},
		{
			name:     "upload subtitle",
			req:      TranslateVideoReq{LocalPath: "/tmp/u.mp4", TargetLang: " es ", TranslationMode: "subtitle"},
			wantLang: "es",
			wantMode: vo.TranslationModeSubtitle,
		},
		{name: "no source", req: TranslateVideoReq{}, wantErr: errno.ErrMissingSource},
		{
			name:    "both sources",
			req:     TranslateVideoReq{LocalPath: "/tmp/u.mp4", OriginalURL: "https://example.com/a.mp4"},
			wantErr: errno.ErrAmbiguousSource,
		},
		{name: "bad url", req: TranslateVideoReq{OriginalURL: "ftp://x/a.mp4"}, wantErr: errno.ErrInvalidInput},
		{
			name:    "bad mode",
			req:     TranslateVideoReq{OriginalURL: "https://example.com/a.mp4", TranslationMode: "karaoke"},
			wantErr: errno.ErrInvalidMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := tt.req.ToJob("fr")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLang, job.TargetLang())
			assert.Equal(t, tt.wantMode, job.Mode())
			assert.Equal(t, entity.DefaultOwnerID, job.OwnerID())
			assert.Equal(t, entity.DefaultTitle, job.Title())
		})
	}
}

func TestRetranslateVideoReq_Normalize(t *testing.T) {
	_, _, err := (&RetranslateVideoReq{VideoID: "  "}).Normalize("fr")
	assert.ErrorIs(t, err, errno.ErrVideoIDRequired)

	_, _, err = (&RetranslateVideoReq{VideoID: "v", TranslationMode: "x"}).Normalize("fr")
	assert.ErrorIs(t, err, errno.ErrInvalidMode)

	lang, mode, err := (&RetranslateVideoReq{VideoID: "v", TranslationMode: "subtitles"}).Normalize("fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
	assert.Equal(t, vo.TranslationModeSubtitle, mode)
}
