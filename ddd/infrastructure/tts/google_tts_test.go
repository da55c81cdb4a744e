package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-translate-service/pkg/config"
)

func TestGoogleTTS_ConcatenatesChunks(t *testing.T) {
	var mu sync.Mutex
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "tw-ob", q.Get("client"))
		assert.Equal(t, "es", q.Get("tl"))
		mu.Lock()
		texts = append(texts, q.Get("q"))
		mu.Unlock()
		_, _ = w.Write([]byte("[mp3:" + q.Get("idx") + "]"))
	}))
	defer srv.Close()

	g := NewGoogleTTS(config.TTSConfig{Endpoint: srv.URL, MaxChunkChars: 500}, srv.Client())
	out := filepath.Join(t.TempDir(), "narration.mp3")
	text := strings.TrimSpace(strings.Repeat("hola mundo ", 15))

	require.NoError(t, g.Synthesize(context.Background(), text, "es", out))

	require.Len(t, texts, 2, "chunk size is capped at 100 characters")
	for _, s := range texts {
		assert.LessOrEqual(t, len([]rune(s)), 100)
	}
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[mp3:0][mp3:1]", string(data))
}

func TestGoogleTTS_FailureRemovesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGoogleTTS(config.TTSConfig{Endpoint: srv.URL}, srv.Client())
	out := filepath.Join(t.TempDir(), "narration.mp3")

	assert.Error(t, g.Synthesize(context.Background(), "bonjour", "fr", out))
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, g.Synthesize(context.Background(), "  ", "fr", out))
}
