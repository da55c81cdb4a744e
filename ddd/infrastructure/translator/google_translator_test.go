package translator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-translate-service/pkg/config"
)

func TestGoogleTranslator_Translate(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "auto", q.Get("sl"))
		assert.Equal(t, "es", q.Get("tl"))
		assert.Equal(t, "t", q.Get("dt"))
		queries = append(queries, q.Get("q"))
		_, _ = w.Write([]byte(`[[["Hola. ","Hello. ",null,null,10],["¿Cómo estás?","How are you?",null,null,10]],null,"en",null,null,null,1]`))
	}))
	defer srv.Close()

	tr := NewGoogleTranslator(config.TranslateConfig{Endpoint: srv.URL, MaxChunkChars: 4500, Timeout: time.Second}, nil)
	got, err := tr.Translate(context.Background(), "Hello. How are you?", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola. ¿Cómo estás?", got)
	assert.Equal(t, []string{"Hello. How are you?"}, queries)
}

func TestGoogleTranslator_ChunksLongText(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[[["x","y"]]]`))
	}))
	defer srv.Close()

	tr := NewGoogleTranslator(config.TranslateConfig{Endpoint: srv.URL, MaxChunkChars: 10}, srv.Client())
	got, err := tr.Translate(context.Background(), strings.Repeat("word ", 6), "de")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "x x x", got)
}

func TestGoogleTranslator_JoinsChunksWithoutExtraSpaces(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lang   string
		pieces []string
		want   string
	}{
		{"english to chinese", "Hello there. How are you?", "zh-CN", []string{"你好。", "你好吗？"}, "你好。你好吗？"},
		{"english to thai", "Hello there. How are you?", "th", []string{"สวัสดี ", "สบายดีไหม"}, "สวัสดีสบายดีไหม"},
		{"chinese source hard cut", "这是一个很长的句子没有空格而且更长", "en", []string{"This is a very long ", "sentence"}, "This is a very long sentence"},
		{"spaced target keeps one space", "Hello there. How are you?", "es", []string{"Hola. ", "¿Cómo estás?"}, "Hola. ¿Cómo estás?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				piece := tt.pieces[calls%len(tt.pieces)]
				calls++
				_, _ = fmt.Fprintf(w, `[[[%q,"src"]]]`, piece)
			}))
			defer srv.Close()

			tr := NewGoogleTranslator(config.TranslateConfig{Endpoint: srv.URL, MaxChunkChars: 13}, srv.Client())
			got, err := tr.Translate(context.Background(), tt.text, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, len(tt.pieces), calls)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoogleTranslator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, "slow down"},
		{"html body", http.StatusOK, "<html></html>"},
		{"empty sentences", http.StatusOK, `[[],null,"en"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tr := NewGoogleTranslator(config.TranslateConfig{Endpoint: srv.URL, MaxChunkChars: 100}, srv.Client())
			_, err := tr.Translate(context.Background(), "hello", "fr")
			assert.Error(t, err)
		})
	}
}

func TestGoogleTranslator_RequiresTarget(t *testing.T) {
	tr := NewGoogleTranslator(config.TranslateConfig{Endpoint: "http://127.0.0.1:1"}, nil)
	_, err := tr.Translate(context.Background(), "hello", " ")
	assert.Error(t, err)
}
