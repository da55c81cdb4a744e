package caption

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/bidi"
)

// 阿拉伯字母的四种呈现形式: 独立、词尾、词首、词中; 0 表示不存在
type letterForms [4]rune

const (
	formIsolated = iota
	formFinal
	formInitial
	formMedial
)

var arabicForms = map[rune]letterForms{
	0x0621: {0xFE80, 0, 0, 0},
	0x0622: {0xFE81, 0xFE82, 0, 0},
	0x0623: {0xFE83, 0xFE84, 0, 0},
	0x0624: {0xFE85, 0xFE86, 0, 0},
	0x0625: {0xFE87, 0xFE88, 0, 0},
	0x0626: {0xFE89, 0xFE8A, 0xFE8B, 0xFE8C},
	0x0627: {0xFE8D, 0xFE8E, 0, 0},
	0x0628: {0xFE8F, 0xFE90, 0xFE91, 0xFE92},
	0x0629: {0xFE93, 0xFE94, 0, 0},
	0x062A: {0xFE95, 0xFE96, 0xFE97, 0xFE98},
	0x062B: {0xFE99, 0xFE9A, 0xFE9B, 0xFE9C},
	0x062C: {0xFE9D, 0xFE9E, 0xFE9F, 0xFEA0},
	0x062D: {0xFEA1, 0xFEA2, 0xFEA3, 0xFEA4},
	0x062E: {0xFEA5, 0xFEA6, 0xFEA7, 0xFEA8},
	0x062F: {0xFEA9, 0xFEAA, 0, 0},
	0x0630: {0xFEAB, 0xFEAC, 0, 0},
	0x0631: {0xFEAD, 0xFEAE, 0, 0},
	0x0632: {0xFEAF, 0xFEB0, 0, 0},
	0x0633: {0xFEB1, 0xFEB2, 0xFEB3, 0xFEB4},
	0x0634: {0xFEB5, 0xFEB6, 0xFEB7, 0xFEB8},
	0x0635: {0xFEB9, 0xFEBA, 0xFEBB, 0xFEBC},
	0x0636: {0xFEBD, 0xFEBE, 0xFEBF, 0xFEC0},
	0x0637: {0xFEC1, 0xFEC2, 0xFEC3, 0xFEC4},
	0x0638: {0xFEC5, 0xFEC6, 0xFEC7, 0xFEC8},
	0x0639: {0xFEC9, 0xFECA, 0xFECB, 0xFECC},
	0x063A: {0xFECD, 0xFECE, 0xFECF, 0xFED0},
	0x0640: {0x0640, 0x0640, 0x0640, 0x0640},
	0x0641: {0xFED1, 0xFED2, 0xFED3, 0xFED4},
	0x0642: {0xFED5, 0xFED6, 0xFED7, 0xFED8},
	0x0643: {0xFED9, 0xFEDA, 0xFEDB, 0xFEDC},
	0x0644: {0xFEDD, 0xFEDE, 0xFEDF, 0xFEE0},
	0x0645: {0xFEE1, 0xFEE2, 0xFEE3, 0xFEE4},
	0x0646: {0xFEE5, 0xFEE6, 0xFEE7, 0xFEE8},
	0x0647: {0xFEE9, 0xFEEA, 0xFEEB, 0xFEEC},
	0x0648: {0xFEED, 0xFEEE, 0, 0},
	0x0649: {0xFEEF, 0xFEF0, 0, 0},
	0x064A: {0xFEF1, 0xFEF2, 0xFEF3, 0xFEF4},
	// 波斯语字母
	0x067E: {0xFB56, 0xFB57, 0xFB58, 0xFB59},
	0x0686: {0xFB7A, 0xFB7B, 0xFB7C, 0xFB7D},
	0x0698: {0xFB8A, 0xFB8B, 0, 0},
	0x06A9: {0xFB8E, 0xFB8F, 0xFB90, 0xFB91},
	0x06AF: {0xFB92, 0xFB93, 0xFB94, 0xFB95},
	0x06CC: {0xFBFC, 0xFBFD, 0xFBFE, 0xFBFF},
}

// lam + alef 连字: [独立, 词尾]
var lamAlef = map[rune][2]rune{
	0x0622: {0xFEF5, 0xFEF6},
	0x0623: {0xFEF7, 0xFEF8},
	0x0625: {0xFEF9, 0xFEFA},
	0x0627: {0xFEFB, 0xFEFC},
}

const arabicLam = 0x0644

// isTransparent 元音符号不参与连接判断
func isTransparent(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670
}

func joinsNext(r rune) bool {
	f, ok := arabicForms[r]
	return ok && f[formInitial] != 0
}

func joinsPrev(r rune) bool {
	f, ok := arabicForms[r]
	return ok && f[formFinal] != 0
}

// reshapeArabic 把阿拉伯字母替换为上下文相关的呈现形式
func reshapeArabic(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in))

	neighbor := func(i, step int) rune {
		for j := i + step; j >= 0 && j < len(in); j += step {
			if !isTransparent(in[j]) {
				return in[j]
			}
		}
		return 0
	}

	var prevLetter rune
	for i := 0; i < len(in); i++ {
		r := in[i]
		if isTransparent(r) {
			out = append(out, r)
			continue
		}
		forms, ok := arabicForms[r]
		if !ok {
			out = append(out, r)
			prevLetter = 0
			continue
		}

		connectsPrev := prevLetter != 0 && joinsNext(prevLetter) && joinsPrev(r)

		if r == arabicLam {
			if next := neighbor(i, 1); next != 0 {
				if lig, ok := lamAlef[next]; ok {
					if connectsPrev {
						out = append(out, lig[1])
					} else {
						out = append(out, lig[0])
					}
					// 跳过 alef（及其前面的元音符号）
					for i++; i < len(in) && in[i] != next; i++ {
						out = append(out, in[i])
					}
					prevLetter = next
					continue
				}
			}
		}

		next := neighbor(i, 1)
		connectsNext := joinsNext(r) && next != 0 && joinsPrev(next)

		form := formIsolated
		switch {
		case connectsPrev && connectsNext:
			form = formMedial
		case connectsPrev:
			form = formFinal
		case connectsNext:
			form = formInitial
		}
		glyph := forms[form]
		if glyph == 0 {
			glyph = forms[formIsolated]
		}
		out = append(out, glyph)
		prevLetter = r
	}
	return string(out)
}

// containsRTL 是否包含阿拉伯文或希伯来文
func containsRTL(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Arabic, unicode.Hebrew) {
			return true
		}
	}
	return false
}

// visualOrder 用 Unicode 双向算法把一行逻辑顺序文本转为从左到右的绘制顺序
func visualOrder(line string) (out string) {
	defer func() {
		if recover() != nil {
			out = bidi.ReverseString(line)
		}
	}()
	var p bidi.Paragraph
	if _, err := p.SetString(line, bidi.DefaultDirection(bidi.RightToLeft)); err != nil {
		return bidi.ReverseString(line)
	}
	ordering, err := p.Order()
	if err != nil {
		return bidi.ReverseString(line)
	}
	var b strings.Builder
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		if run.Direction() == bidi.RightToLeft {
			b.WriteString(bidi.ReverseString(run.String()))
		} else {
			b.WriteString(run.String())
		}
	}
	return b.String()
}
