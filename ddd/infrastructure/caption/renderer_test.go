package caption

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-translate-service/pkg/config"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(config.CaptionConfig{
		FontSize:      48,
		MinFontSize:   16,
		FontStep:      4,
		Padding:       12,
		MaxWidthRatio: 0.9,
	})
	require.NoError(t, err)
	return r
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRender_FitsFrame(t *testing.T) {
	r := newTestRenderer(t)
	tests := []struct {
		name        string
		text        string
		videoWidth  int
		videoHeight int
	}{
		{"short", "Bonjour tout le monde", 1280, 720},
		{"long paragraph", strings.Repeat("Ceci est une phrase assez longue pour être coupée. ", 12), 640, 360},
		{"single long word", strings.Repeat("x", 300), 480, 270},
		{"tiny video unknown height", "hello world", 20, 0},
		{"arabic", "مرحبا بالعالم، كيف حالك اليوم؟", 854, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "c.png")
			w, h, err := r.Render(tt.text, tt.videoWidth, tt.videoHeight, out)
			require.NoError(t, err)

			assert.LessOrEqual(t, w, int(float64(tt.videoWidth)*0.9))
			if tt.videoHeight > 0 {
				assert.LessOrEqual(t, h, int(float64(tt.videoHeight)*0.3))
			}
			assert.Greater(t, w, 0)
			assert.Greater(t, h, 0)

			dw, dh := decodeSize(t, out)
			assert.Equal(t, w, dw)
			assert.Equal(t, h, dh)
		})
	}
}

func TestFit_LongParagraphStopsAtFloor(t *testing.T) {
	r := newTestRenderer(t)
	text := strings.Repeat("Ceci est une phrase assez longue pour être coupée. ", 12)

	fr, err := r.fit(text, 576, 108)
	require.NoError(t, err)
	defer fr.face.Close()

	assert.Equal(t, 16.0, fr.size)
	assert.LessOrEqual(t, len(fr.lines), 3)
	assert.True(t, strings.HasSuffix(fr.lines[len(fr.lines)-1], "..."), "overflow is truncated")
	lineHeight := fr.face.Metrics().Height.Ceil()
	assert.LessOrEqual(t, lineHeight*len(fr.lines)+2*12, 108)
	assert.LessOrEqual(t, fr.widest, 576-2*12)
}

func TestFit_ShrinksBeforeTruncating(t *testing.T) {
	r := newTestRenderer(t)

	short, err := r.fit("Bonjour tout le monde", 1152, 216)
	require.NoError(t, err)
	defer short.face.Close()
	assert.Equal(t, 48.0, short.size)
	assert.Len(t, short.lines, 1)

	medium, err := r.fit(strings.Repeat("word ", 40), 1152, 216)
	require.NoError(t, err)
	defer medium.face.Close()
	assert.Less(t, medium.size, 48.0)
	assert.GreaterOrEqual(t, medium.size, 16.0)
	assert.LessOrEqual(t, len(medium.lines), 3)
	for _, l := range medium.lines {
		assert.False(t, strings.HasSuffix(l, "..."))
	}
}

func TestRender_Rejects(t *testing.T) {
	r := newTestRenderer(t)
	_, _, err := r.Render("   ", 1280, 720, filepath.Join(t.TempDir(), "a.png"))
	assert.Error(t, err)
	_, _, err = r.Render("hi", 0, 720, filepath.Join(t.TempDir(), "a.png"))
	assert.Error(t, err)
}

func TestNewRenderer_FallsBackToBuiltinFont(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "broken.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0o644))

	for _, p := range []string{bad, "/does/not/exist.ttf"} {
		r, err := NewRenderer(config.CaptionConfig{FontPath: p})
		require.NoError(t, err)
		assert.Equal(t, 48.0, r.fontSize)
		assert.Equal(t, 16.0, r.minFontSize)
		assert.Equal(t, 0.9, r.maxWidthRatio)
		assert.Equal(t, 0.3, r.maxHeightRatio)
		assert.Equal(t, 3, r.maxLines)
	}
}

func TestReshapeArabic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []rune
	}{
		{"lam alef isolated", "لا", []rune{0xFEFB}},
		{"salam", "سلام", []rune{0xFEB3, 0xFEFC, 0xFEE1}},
		{"bayt", "بيت", []rune{0xFE91, 0xFEF4, 0xFE96}},
		{"non joining dal", "دب", []rune{0xFEA9, 0xFE8F}},
		{"latin untouched", "abc", []rune("abc")},
		{"harakat kept", "بَت", []rune{0xFE91, 0x064E, 0xFE96}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.want), reshapeArabic(tt.in))
		})
	}
}

func TestVisualOrder_PreservesRunes(t *testing.T) {
	line := reshapeArabic("مرحبا 123 world")
	got := visualOrder(line)
	assert.Equal(t, utf8.RuneCountInString(line), utf8.RuneCountInString(got))
}

func TestContainsRTL(t *testing.T) {
	assert.True(t, containsRTL("hello مرحبا"))
	assert.True(t, containsRTL("שלום"))
	assert.False(t, containsRTL("hello 你好"))
}
