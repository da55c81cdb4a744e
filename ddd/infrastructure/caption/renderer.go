package caption

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

var boxColor = color.RGBA{R: 0, G: 0, B: 0, A: 160}

// Renderer 把字幕文本画成居中的半透明底框 PNG
type Renderer struct {
	font           *opentype.Font
	fontSize       float64
	minFontSize    float64
	fontStep       float64
	padding        int
	maxWidthRatio  float64
	maxHeightRatio float64
	maxLines       int
}

// fitResult 字号收敛后的排版结果
type fitResult struct {
	face   font.Face
	size   float64
	lines  []string
	widest int
}

// NewRenderer font_path 不可用时退回内置的 Go 字体
func NewRenderer(cfg config.CaptionConfig) (*Renderer, error) {
	f, err := loadFont(cfg.FontPath)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		font:           f,
		fontSize:       cfg.FontSize,
		minFontSize:    cfg.MinFontSize,
		fontStep:       cfg.FontStep,
		padding:        cfg.Padding,
		maxWidthRatio:  cfg.MaxWidthRatio,
		maxHeightRatio: cfg.MaxHeightRatio,
		maxLines:       cfg.MaxLines,
	}
	if r.fontSize <= 0 {
		r.fontSize = 48
	}
	if r.minFontSize <= 0 || r.minFontSize > r.fontSize {
		r.minFontSize = r.fontSize
		if r.fontSize > 16 {
			r.minFontSize = 16
		}
	}
	if r.fontStep <= 0 {
		r.fontStep = 4
	}
	if r.padding < 0 {
		r.padding = 0
	}
	if r.maxWidthRatio <= 0 || r.maxWidthRatio > 1 {
		r.maxWidthRatio = 0.9
	}
	if r.maxHeightRatio <= 0 || r.maxHeightRatio > 1 {
		r.maxHeightRatio = 0.3
	}
	if r.maxLines <= 0 {
		r.maxLines = 3
	}
	return r, nil
}

func loadFont(path string) (*opentype.Font, error) {
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var f *opentype.Font
			if f, err = opentype.Parse(data); err == nil {
				return f, nil
			}
		}
		logger.Warn("Caption font unavailable, using built-in font", map[string]interface{}{
			"font_path": path,
			"error":     err.Error(),
		})
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse built-in font: %w", err)
	}
	return f, nil
}

// Render 返回图片宽高; 宽度不超过视频宽度的 maxWidthRatio，
// 高度不超过视频高度的 maxHeightRatio 且最多 maxLines 行。videoHeight<=0 时只限制行数
func (r *Renderer) Render(text string, videoWidth, videoHeight int, outPath string) (int, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0, errors.New("empty caption text")
	}
	if videoWidth <= 0 {
		return 0, 0, fmt.Errorf("invalid video width %d", videoWidth)
	}

	rtl := containsRTL(text)
	if rtl {
		text = reshapeArabic(text)
	}

	maxWidth := int(float64(videoWidth) * r.maxWidthRatio)
	if maxWidth < 1 {
		maxWidth = 1
	}
	maxHeight := 0
	if videoHeight > 0 {
		maxHeight = int(float64(videoHeight) * r.maxHeightRatio)
	}

	fr, err := r.fit(text, maxWidth, maxHeight)
	if err != nil {
		return 0, 0, err
	}
	defer fr.face.Close()

	metrics := fr.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	w := fr.widest + 2*r.padding
	if w > maxWidth {
		w = maxWidth
	}
	h := lineHeight*len(fr.lines) + 2*r.padding

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: boxColor}, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.White, Face: fr.face}
	for i, line := range fr.lines {
		if rtl {
			line = visualOrder(line)
		}
		lw := d.MeasureString(line).Ceil()
		x := (w - lw) / 2
		if x < 0 {
			x = 0
		}
		y := r.padding + i*lineHeight + ascent
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}

	if err := writePNG(outPath, img); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// fit 从 fontSize 开始按 fontStep 缩小，直到换行后的文字块满足行数和高度限制或到达最小字号。
// 最小字号仍放不下时截断多余的行，末行以 ... 结尾
func (r *Renderer) fit(text string, maxWidth, maxHeight int) (*fitResult, error) {
	inner := maxWidth - 2*r.padding
	if inner < 1 {
		inner = 1
	}

	size := r.fontSize
	for {
		face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create font face: %w", err)
		}

		lines := wrap(face, text, inner)
		budget := r.lineBudget(face, maxHeight)
		if len(lines) <= budget {
			return &fitResult{face: face, size: size, lines: lines, widest: widestLine(face, lines)}, nil
		}
		if size <= r.minFontSize {
			logger.Warn("Caption truncated at minimum font size", map[string]interface{}{
				"lines":  len(lines),
				"budget": budget,
				"size":   size,
			})
			lines = truncateLines(face, lines, budget, inner)
			return &fitResult{face: face, size: size, lines: lines, widest: widestLine(face, lines)}, nil
		}
		face.Close()

		size -= r.fontStep
		if size < r.minFontSize {
			size = r.minFontSize
		}
	}
}

// lineBudget 当前字号下允许的行数，至少一行
func (r *Renderer) lineBudget(face font.Face, maxHeight int) int {
	budget := r.maxLines
	if maxHeight > 0 {
		lineHeight := face.Metrics().Height.Ceil()
		if lineHeight < 1 {
			lineHeight = 1
		}
		if byHeight := (maxHeight - 2*r.padding) / lineHeight; byHeight < budget {
			budget = byHeight
		}
	}
	if budget < 1 {
		budget = 1
	}
	return budget
}

func widestLine(face font.Face, lines []string) int {
	widest := 0
	for _, l := range lines {
		if lw := font.MeasureString(face, l).Ceil(); lw > widest {
			widest = lw
		}
	}
	return widest
}

const ellipsis = "..."

func truncateLines(face font.Face, lines []string, n, maxWidth int) []string {
	if len(lines) <= n {
		return lines
	}
	out := append([]string(nil), lines[:n]...)
	last := []rune(out[n-1])
	for len(last) > 0 && font.MeasureString(face, string(last)+ellipsis).Ceil() > maxWidth {
		last = last[:len(last)-1]
	}
	out[n-1] = strings.TrimRight(string(last), " ") + ellipsis
	return out
}

// wrap 按单词贪心换行，单个超宽的词按字符拆开
func wrap(face font.Face, text string, maxWidth int) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		if font.MeasureString(face, word).Ceil() <= maxWidth {
			cur = word
			continue
		}
		var piece []rune
		for _, rn := range word {
			next := append(piece, rn)
			if len(piece) > 0 && font.MeasureString(face, string(next)).Ceil() > maxWidth {
				lines = append(lines, string(piece))
				piece = []rune{rn}
				continue
			}
			piece = next
		}
		cur = string(piece)
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create caption image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode caption image: %w", err)
	}
	return nil
}
