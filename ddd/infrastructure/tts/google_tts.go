package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
	"video-translate-service/pkg/textchunk"
)

// GoogleTTS 调用 translate_tts 接口合成语音。接口单次最多约100字符，
// 按单词切块后把各段 mp3 依次拼接成一个文件。
type GoogleTTS struct {
	endpoint string
	maxChars int
	client   *http.Client
}

func NewGoogleTTS(cfg config.TTSConfig, client *http.Client) *GoogleTTS {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	maxChars := cfg.MaxChunkChars
	if maxChars <= 0 || maxChars > 100 {
		maxChars = 100
	}
	return &GoogleTTS{endpoint: cfg.Endpoint, maxChars: maxChars, client: client}
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text, lang, outPath string) (err error) {
	chunks := textchunk.Split(text, g.maxChars)
	if len(chunks) == 0 {
		return errors.New("nothing to synthesize")
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create narration file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(outPath)
		}
	}()

	for i, chunk := range chunks {
		if err := g.fetchChunk(ctx, f, chunk, lang, i, len(chunks)); err != nil {
			return fmt.Errorf("tts chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	logger.Debug("Narration chunks fetched", map[string]interface{}{
		"lang":   lang,
		"chunks": len(chunks),
	})
	return nil
}

func (g *GoogleTTS) fetchChunk(ctx context.Context, w io.Writer, text, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", text)
	q.Set("idx", strconv.Itoa(idx))
	q.Set("total", strconv.Itoa(total))
	q.Set("textlen", strconv.Itoa(len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("empty audio response")
	}
	return nil
}
