package layout

import "strings"

// LineSpacing 是相邻两行之间的固定间距（pt）。
const LineSpacing = 2.0

// avgGlyphEm 是估算字符上限时使用的平均字宽（相对字号）。
const avgGlyphEm = 0.5

// Flow 是一段文本的折行结果。
type Flow struct {
	Lines  []string
	Height float64
}

// LineCount returns the number of wrapped lines.
func (f Flow) LineCount() int { return len(f.Lines) }

// Measure 按字符上限贪心折行并计算高度，不做任何绘制。
// charLimit <= 0 表示不折行；空文本按一行计算。
// 超过上限的单词独占一行且不拆分，显式换行保留，连续空白折叠为一个空格。
func Measure(text string, charLimit int, fontSize float64) Flow {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrap(strings.Fields(para), charLimit)...)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return Flow{Lines: lines, Height: float64(len(lines)) * (fontSize + LineSpacing)}
}

func wrap(words []string, charLimit int) []string {
	if len(words) == 0 {
		return []string{""}
	}
	if charLimit <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, w := range words {
		n := len([]rune(w))
		if curLen > 0 && curLen+1+n > charLimit {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += n
	}
	return append(out, cur.String())
}

// CharLimit 根据可用宽度与字号估算每行的字符上限。
func CharLimit(widthPt, fontSize float64) int {
	if fontSize <= 0 {
		return 0
	}
	n := int(widthPt / (fontSize * avgGlyphEm))
	if n < 1 {
		return 1
	}
	return n
}

// LineHeight returns the advance of one line at fontSize.
func LineHeight(fontSize float64) float64 { return fontSize + LineSpacing }
