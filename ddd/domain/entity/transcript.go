package entity

import "strings"

// TranscriptSegment 一段带时间范围的转写文本，时间单位为秒
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// IsBlank 文本为空或只有空白
func (s TranscriptSegment) IsBlank() bool {
	return strings.TrimSpace(s.Text) == ""
}

// Transcript 语音识别结果
type Transcript struct {
	Language string              `json:"language,omitempty"`
	FullText string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// SpokenSegments 过滤掉空白段
func (t *Transcript) SpokenSegments() []TranscriptSegment {
	out := make([]TranscriptSegment, 0, len(t.Segments))
	for _, s := range t.Segments {
		if !s.IsBlank() {
			out = append(out, s)
		}
	}
	return out
}
