package vo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-translate-service/pkg/errno"
)

func TestParseTranslationMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TranslationMode
		wantErr bool
	}{
		{"", TranslationModeVoice, false},
		{"Voice", TranslationModeVoice, false},
		{" subtitle ", TranslationModeSubtitle, false},
		{"subtitles", TranslationModeSubtitle, false},
		{"karaoke", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTranslationMode(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errno.ErrInvalidMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMediaSource_Validate(t *testing.T) {
	tests := []struct {
		name string
		src  MediaSource
		want error
	}{
		{"neither", MediaSource{}, errno.ErrMissingSource},
		{"both", MediaSource{LocalPath: "/a.mp4", RemoteURL: "https://x/a.mp4"}, errno.ErrAmbiguousSource},
		{"ftp", MediaSource{RemoteURL: "ftp://x/a.mp4"}, errno.ErrInvalidInput},
		{"no host", MediaSource{RemoteURL: "https:///a.mp4"}, errno.ErrInvalidInput},
		{"local", MediaSource{LocalPath: "/a.mp4"}, nil},
		{"https", MediaSource{RemoteURL: "https://cdn.example.com/a.mp4"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPublishResult_Resolve(t *testing.T) {
	u, err := PublicOK("https://x/y.mp4").Resolve()
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.mp4", u)

	u, err = SignedOK("https://x/y.mp4?sig=1", time.Now().Add(time.Hour)).Resolve()
	require.NoError(t, err)
	assert.Contains(t, u, "sig=1")

	_, err = PublicOK("").Resolve()
	assert.Error(t, err)

	_, err = PublishFailed("bucket missing").Resolve()
	assert.EqualError(t, err, "bucket missing")

	_, err = PublishResult{}.Resolve()
	assert.Error(t, err)
}

func TestJobStatus(t *testing.T) {
	assert.True(t, JobStatusCompleted.IsFinalStatus())
	assert.False(t, JobStatusComposing.IsFinalStatus())
	assert.False(t, JobStatus("bogus").IsValid())
	assert.Less(t, JobStatusTranscribing.BaseProgress(), JobStatusPublishing.BaseProgress())
}
