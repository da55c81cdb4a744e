package textchunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"blank", "   \n ", 10, nil},
		{"fits", "hello world", 20, []string{"hello world"}},
		{"word boundary", "hello big world", 9, []string{"hello big", "world"}},
		{"long word", "abcdefghij k", 4, []string{"abcd", "efgh", "ij k"}},
		{"collapses whitespace", "a \n\t b", 10, []string{"a b"}},
		{"no limit", "a b", 0, []string{"a b"}},
		{"multibyte", "héllo wörld", 5, []string{"héllo", "wörld"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.text, tt.max))
		})
	}
}

func TestSplit_NeverExceedsLimit(t *testing.T) {
	text := strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 40)
	for _, c := range Split(text, 100) {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(Split(text, 100), " "))
}

func TestSplitChunks_KeepsSeparators(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []Chunk
	}{
		{"single", "hello", 10, []Chunk{{Text: "hello"}}},
		{"word boundary", "hello big world", 9, []Chunk{{"hello big", " "}, {"world", ""}}},
		{"cjk hard cut", "你好世界再见", 4, []Chunk{{"你好世界", ""}, {"再见", ""}}},
		{"hard cut then word", "abcdefghij k", 4, []Chunk{{"abcd", ""}, {"efgh", ""}, {"ij k", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitChunks(tt.text, tt.max))
		})
	}

	var b strings.Builder
	for _, c := range SplitChunks("这是一个很长的句子没有空格", 5) {
		b.WriteString(c.Text + c.Sep)
	}
	assert.Equal(t, "这是一个很长的句子没有空格", b.String())
}
