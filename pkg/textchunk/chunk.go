package textchunk

import (
	"strings"
	"unicode/utf8"
)

// Chunk 一个文本块及其后面在原文中的分隔符：
// 按空白断开时为 " "，超长单词硬切或最后一块时为空
type Chunk struct {
	Text string
	Sep  string
}

// Split 按空白把文本贪心地打包成不超过 maxRunes 个字符的块。
// 超长的单词按字符切开；空白文本返回 nil。
func Split(text string, maxRunes int) []string {
	chunks := SplitChunks(text, maxRunes)
	if chunks == nil {
		return nil
	}
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// SplitChunks 同 Split，额外保留块之间的原始分隔符，拼回时不会凭空多出空格
func SplitChunks(text string, maxRunes int) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxRunes <= 0 {
		return []Chunk{{Text: strings.Join(words, " ")}}
	}

	var chunks []Chunk
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, Chunk{Text: cur.String(), Sep: " "})
			cur.Reset()
			curLen = 0
		}
	}

	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if wl > maxRunes {
			flush()
			runes := []rune(w)
			for len(runes) > maxRunes {
				chunks = append(chunks, Chunk{Text: string(runes[:maxRunes])})
				runes = runes[maxRunes:]
			}
			cur.WriteString(string(runes))
			curLen = len(runes)
			continue
		}
		if curLen > 0 && curLen+1+wl > maxRunes {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	flush()
	chunks[len(chunks)-1].Sep = ""
	return chunks
}
