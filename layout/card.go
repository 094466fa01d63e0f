package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/datacards/binding"
	"github.com/ByLCY/datacards/roster"
)

const (
	// blockGap 是卡片内相邻两个块之间的空白。
	blockGap    = 4.0
	cellPadding = 1.5
	// nameColumnShare 是表格第一列（名称）占用的宽度比例。
	nameColumnShare = 0.3
)

// cardComposer 把一个单位拆成按顺序排列的内容块，每个块都先经 TextFlow 测量。
type cardComposer struct {
	variant Variant
	res     ResourceSet
	rules   *roster.RuleBook
	opts    Options
	width   float64
	// rendered 记录整份文档中已输出过正文的规则 ID。
	rendered map[string]bool
}

func (c *cardComposer) compose(e roster.Entry) []block {
	u := e.Unit
	var blocks []block
	add := func(b block, ok bool) {
		if ok {
			blocks = append(blocks, b)
		}
	}

	add(c.header(e), true)
	add(c.statTable(u))
	add(c.wargear(u))
	add(c.weaponTable(u))
	add(c.labelled("Rules", c.ruleTitles(u)))
	add(c.labelled("Keywords", u.Keywords))
	if c.opts.ReferenceRules {
		for _, id := range unitRuleIDs(u) {
			if c.rendered[id] {
				continue
			}
			rule, ok := c.rules.Lookup(id)
			if !ok {
				continue
			}
			c.rendered[id] = true
			blocks = append(blocks, c.reference(rule))
		}
	}
	if c.opts.Tracking {
		blocks = append(blocks, c.tracking(u.Tracking))
	}
	return blocks
}

// HeaderData 是卡片标题模板可用的字段。
func HeaderData(e roster.Entry) map[string]any {
	u := e.Unit
	return map[string]any{
		"name":   u.Name,
		"role":   u.Role,
		"count":  e.Count,
		"points": e.Points,
		"pl":     u.PowerLevel,
		"models": u.ModelCount(),
	}
}

func (c *cardComposer) header(e roster.Entry) block {
	text := binding.Interpolate(c.variant.Header, HeaderData(e))
	tb := c.text(text, FontHeading, c.variant.HeadingSize, 0, 0, c.width)
	return block{height: tb.Height + blockGap, texts: []TextBox{tb}}
}

// text 测量并生成一个相对坐标的文本框。
func (c *cardComposer) text(content, font string, size, x, y, width float64) TextBox {
	flow := Measure(content, CharLimit(width, size), size)
	lines := make([]TextLine, len(flow.Lines))
	for i, l := range flow.Lines {
		lines[i] = TextLine{Content: l, Height: LineHeight(size)}
	}
	return TextBox{
		Content:    content,
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: LineHeight(size),
		Font:       font,
		FontSize:   size,
		Color:      c.res.Colors[ColorInk],
		Lines:      lines,
		Height:     flow.Height,
	}
}

func (c *cardComposer) statTable(u *roster.Unit) (block, bool) {
	var header []string
	seen := map[string]bool{}
	var rows [][]string
	rowSeen := map[string]bool{}
	for _, m := range u.Models {
		if len(m.Stats) == 0 {
			continue
		}
		for _, s := range m.Stats {
			if !seen[s.Name] {
				seen[s.Name] = true
				header = append(header, s.Name)
			}
		}
	}
	if len(header) == 0 {
		return block{}, false
	}
	for _, m := range u.Models {
		if len(m.Stats) == 0 {
			continue
		}
		row := []string{m.Name}
		for _, name := range header {
			v, _ := roster.StatValue(m.Stats, name)
			row = append(row, v)
		}
		key := strings.Join(row, "\x00")
		if rowSeen[key] {
			continue
		}
		rowSeen[key] = true
		rows = append(rows, row)
	}
	return c.table(append([]string{"Model"}, header...), rows), true
}

func (c *cardComposer) weaponTable(u *roster.Unit) (block, bool) {
	var header []string
	seen := map[string]bool{}
	var rows [][]string
	named := map[string]bool{}
	collect := func(w roster.Weapon) {
		if len(w.Stats) == 0 || named[w.Name] {
			return
		}
		named[w.Name] = true
		for _, s := range w.Stats {
			if !seen[s.Name] {
				seen[s.Name] = true
				header = append(header, s.Name)
			}
		}
	}
	var weapons []roster.Weapon
	for _, m := range u.Models {
		weapons = append(weapons, m.Weapons...)
	}
	weapons = append(weapons, u.Wargear...)
	for _, w := range weapons {
		collect(w)
	}
	if len(header) == 0 {
		return block{}, false
	}
	done := map[string]bool{}
	for _, w := range weapons {
		if len(w.Stats) == 0 || done[w.Name] {
			continue
		}
		done[w.Name] = true
		row := []string{w.Name}
		for _, name := range header {
			v, _ := roster.StatValue(w.Stats, name)
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return c.table(append([]string{"Weapon"}, header...), rows), true
}

// table 生成一个带表头的表格块，第一列固定占比，其余列平均分配。
func (c *cardComposer) table(header []string, rows [][]string) block {
	size := c.variant.FontSize
	cols := len(header)
	widths := make([]float64, cols)
	widths[0] = c.width * nameColumnShare
	if cols == 1 {
		widths[0] = c.width
	} else {
		rest := (c.width - widths[0]) / float64(cols-1)
		for i := 1; i < cols; i++ {
			widths[i] = rest
		}
	}
	fill := c.res.Colors[ColorMuted]
	tb := TableBox{
		Width:        c.width,
		ColumnWidths: widths,
		BorderColor:  c.res.Colors[ColorInk],
		HeaderFill:   &fill,
	}

	y := 0.0
	all := append([][]string{header}, rows...)
	for ri, cells := range all {
		isHeader := ri == 0
		font := FontBody
		if isHeader {
			font = FontHeading
		}
		var row TableRow
		row.Y = y
		row.IsHeader = isHeader
		x := 0.0
		maxH := 0.0
		for ci := 0; ci < cols; ci++ {
			content := ""
			if ci < len(cells) {
				content = cells[ci]
			}
			t := c.text(content, font, size, x+cellPadding, y+cellPadding, widths[ci]-2*cellPadding)
			if ci > 0 {
				// 属性列居中，名称列左对齐
				t.Align = "center"
			}
			if t.Height > maxH {
				maxH = t.Height
			}
			row.Cells = append(row.Cells, TableCell{Text: t})
			x += widths[ci]
		}
		row.Height = maxH + 2*cellPadding
		tb.Rows = append(tb.Rows, row)
		y += row.Height
	}
	return block{height: tb.Height() + blockGap, tables: []TableBox{tb}}
}

// wargear 每个模型一行，单位级装备单独一行。
func (c *cardComposer) wargear(u *roster.Unit) (block, bool) {
	var lines []string
	for _, m := range u.Models {
		if len(m.Weapons) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", m.Name, times(m.Count), weaponList(m.Weapons)))
	}
	if len(u.Wargear) > 0 {
		lines = append(lines, fmt.Sprintf("Unit: %s", weaponList(u.Wargear)))
	}
	if len(lines) == 0 {
		return block{}, false
	}
	size := c.variant.FontSize
	var texts []TextBox
	y := 0.0
	for _, l := range lines {
		tb := c.text(l, FontBody, size, 0, y, c.width)
		texts = append(texts, tb)
		y += tb.Height
	}
	return block{height: y + blockGap, texts: texts}, true
}

// labelled 生成 "Label: a, b, c" 形式的单行（可折行）块。
func (c *cardComposer) labelled(label string, items []string) (block, bool) {
	if len(items) == 0 {
		return block{}, false
	}
	tb := c.text(label+": "+strings.Join(items, ", "), FontBody, c.variant.FontSize, 0, 0, c.width)
	return block{height: tb.Height + blockGap, texts: []TextBox{tb}}, true
}

func (c *cardComposer) ruleTitles(u *roster.Unit) []string {
	var out []string
	for _, id := range u.Rules {
		rule, ok := c.rules.Lookup(id)
		if !ok || rule.Title == "" {
			continue
		}
		out = append(out, rule.Title)
	}
	return out
}

// reference 输出规则的标题与全文。
func (c *cardComposer) reference(r roster.Rule) block {
	size := c.variant.FontSize
	title := c.text(r.Title, FontHeading, size, 0, 0, c.width)
	body := c.text(r.Text, FontBody, size, 0, title.Height, c.width)
	return block{height: title.Height + body.Height + blockGap, texts: []TextBox{title, body}}
}

// trackingFields 是战役追踪计数的标签，顺序即输出顺序。
var trackingFields = []string{"Battles played", "Battles survived", "Experience", "Crusade points", "Rank"}

// tracking 为叙事计数输出空白填写框；荣誉与伤疤各占三行高度。
func (c *cardComposer) tracking(t *roster.Tracking) block {
	size := c.variant.FontSize
	lh := LineHeight(size)
	ink := c.res.Colors[ColorInk]
	labelW := c.width * nameColumnShare
	boxW := c.width - labelW
	var b block
	y := 0.0
	values := trackingValues(t)
	for i, label := range trackingFields {
		b.texts = append(b.texts, c.text(label, FontBody, size, 0, y, labelW))
		b.rects = append(b.rects, Rect{X: labelW, Y: y, Width: boxW, Height: lh, StrokeColor: ink, StrokeWidth: 0.5})
		if values[i] != "" {
			b.texts = append(b.texts, c.text(values[i], FontBody, size, labelW+cellPadding, y, boxW))
		}
		y += lh + 2
	}
	for _, label := range []string{"Battle honours", "Battle scars"} {
		b.texts = append(b.texts, c.text(label, FontBody, size, 0, y, labelW))
		b.rects = append(b.rects, Rect{X: labelW, Y: y, Width: boxW, Height: 3 * lh, StrokeColor: ink, StrokeWidth: 0.5})
		y += 3*lh + 2
	}
	b.height = y + blockGap
	return b
}

// trackingValues 把已有计数填入框中；为零的计数保持空白。
func trackingValues(t *roster.Tracking) []string {
	out := make([]string, len(trackingFields))
	if t == nil {
		return out
	}
	num := func(n int) string {
		if n == 0 {
			return ""
		}
		return fmt.Sprint(n)
	}
	out[0] = num(t.BattlesPlayed)
	out[1] = num(t.BattlesSurvived)
	out[2] = num(t.Experience)
	out[3] = num(t.CrusadePoints)
	out[4] = t.Rank
	return out
}

// unitRuleIDs 返回单位与其武器引用的规则 ID，保序去重。
func unitRuleIDs(u *roster.Unit) []string {
	seen := map[string]bool{}
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	add(u.Rules)
	for _, m := range u.Models {
		for _, w := range m.Weapons {
			add(w.Rules)
		}
	}
	for _, w := range u.Wargear {
		add(w.Rules)
	}
	return out
}

// weaponList 合并同名武器并按名称排序，例如 "Bolt rifle x4, Power sword"。
func weaponList(ws []roster.Weapon) string {
	counts := map[string]int{}
	var names []string
	for _, w := range ws {
		if _, ok := counts[w.Name]; !ok {
			names = append(names, w.Name)
		}
		counts[w.Name] += w.Count
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + times(counts[n])
	}
	return strings.Join(parts, ", ")
}

func times(n int) string {
	if n <= 1 {
		return ""
	}
	return fmt.Sprintf(" x%d", n)
}
