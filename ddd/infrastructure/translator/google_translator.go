package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/textchunk"
)

// GoogleTranslator 调用 translate_a/single 网页接口，源语言自动检测
type GoogleTranslator struct {
	endpoint string
	maxChars int
	client   *http.Client
}

func NewGoogleTranslator(cfg config.TranslateConfig, client *http.Client) *GoogleTranslator {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GoogleTranslator{
		endpoint: cfg.Endpoint,
		maxChars: cfg.MaxChunkChars,
		client:   client,
	}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(targetLang) == "" {
		return "", errors.New("target language is required")
	}
	chunks := textchunk.SplitChunks(text, g.maxChars)
	if len(chunks) == 0 {
		return text, nil
	}

	// 块之间按原文的分隔符拼接; 目标语言不用空格分词时不补空格
	spaced := usesWordSpacing(targetLang)
	var b strings.Builder
	for _, chunk := range chunks {
		translated, err := g.translateChunk(ctx, chunk.Text, targetLang)
		if err != nil {
			return "", err
		}
		if chunk.Sep == "" {
			b.WriteString(translated)
			continue
		}
		b.WriteString(strings.TrimRightFunc(translated, unicode.IsSpace))
		if spaced {
			b.WriteString(chunk.Sep)
		}
	}
	return b.String(), nil
}

// 书写时词与词之间不加空格的语言
var unspacedLangs = map[string]bool{
	"zh": true, "ja": true, "th": true, "lo": true, "km": true, "my": true, "bo": true,
}

// usesWordSpacing zh-CN / zh_TW 之类按主语言判断
func usesWordSpacing(lang string) bool {
	base := strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}
	return !unspacedLangs[base]
}

func (g *GoogleTranslator) translateChunk(ctx context.Context, text, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}
	return parseTranslateResponse(body)
}

// parseTranslateResponse 响应形如 [[["Hola","Hello",...],[...]],null,"en"]，拼接每句译文
func parseTranslateResponse(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("parse translate response: %w", err)
	}
	if len(root) == 0 {
		return "", errors.New("empty translate response")
	}
	var sentences [][]json.RawMessage
	if err := json.Unmarshal(root[0], &sentences); err != nil {
		return "", fmt.Errorf("parse translate sentences: %w", err)
	}

	var b strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(s[0], &piece); err != nil {
			continue
		}
		b.WriteString(piece)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("translate response has no text")
	}
	return b.String(), nil
}
