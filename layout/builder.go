package layout

import (
	"strings"

	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/roster"
)

// 分隔线的粗细与占用高度（pt）。
const dividerWidth = 2.0

// Build 将（可能已折叠的）单位排版为卡片页面。
// 每个块先测量高度再放置；放不下时换页，详见 pageCollector.place。
func Build(entries []roster.Entry, r *roster.Roster, tpl *Template, opts Options) (*Result, error) {
	if tpl == nil {
		return nil, apperrors.New(apperrors.KindRender, "未提供卡片模板")
	}
	v, err := tpl.Variant(opts.Density())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.New(apperrors.KindRender, "没有可排版的单位")
	}
	var book *roster.RuleBook
	if r != nil {
		book = r.Rules
	}

	pc := newPageCollector(v, tpl.Resources)
	cc := &cardComposer{
		variant:  v,
		res:      tpl.Resources,
		rules:    book,
		opts:     opts,
		width:    pc.state.Width(),
		rendered: map[string]bool{},
	}
	for _, e := range entries {
		if e.Unit == nil {
			continue
		}
		blocks := cc.compose(e)
		pc.startCard(e.Unit.Name, blocks[0].height)
		for _, b := range blocks {
			pc.place(b)
		}
	}

	meta := tpl.Meta
	if r != nil && r.Name != "" {
		meta.Title = r.Name
	}
	return &Result{
		Variant:   v.Name,
		Pages:     pc.pages(),
		Resources: tpl.Resources,
		Meta:      meta,
	}, nil
}

// block 是测量好的内容块，坐标相对块的左上角。
type block struct {
	height float64
	texts  []TextBox
	tables []TableBox
	lines  []Line
	rects  []Rect
}

// at 返回平移到 (x, y) 的副本。
func (b block) at(x, y float64) block {
	out := block{height: b.height}
	for _, t := range b.texts {
		t.X += x
		t.Y += y
		out.texts = append(out.texts, t)
	}
	for _, t := range b.tables {
		t.X += x
		t.Y += y
		rows := make([]TableRow, len(t.Rows))
		for i, row := range t.Rows {
			row.Y += y
			cells := make([]TableCell, len(row.Cells))
			for j, c := range row.Cells {
				c.Text.X += x
				c.Text.Y += y
				cells[j] = c
			}
			row.Cells = cells
			rows[i] = row
		}
		t.Rows = rows
		out.tables = append(out.tables, t)
	}
	for _, l := range b.lines {
		l.X1 += x
		l.X2 += x
		l.Y1 += y
		l.Y2 += y
		out.lines = append(out.lines, l)
	}
	for _, r := range b.rects {
		r.X += x
		r.Y += y
		out.rects = append(out.rects, r)
	}
	return out
}

// clip 丢弃超出 maxY 的内容：文本按行截断，表格按行截断，线和矩形整体丢弃。
func (b block) clip(maxY float64) block {
	out := block{height: b.height}
	for _, t := range b.texts {
		if t, ok := clipText(t, maxY); ok {
			out.texts = append(out.texts, t)
		}
	}
	for _, t := range b.tables {
		var rows []TableRow
		for _, row := range t.Rows {
			if row.Y+row.Height > maxY {
				break
			}
			rows = append(rows, row)
		}
		if len(rows) > 0 {
			t.Rows = rows
			out.tables = append(out.tables, t)
		}
	}
	for _, l := range b.lines {
		if max(l.Y1, l.Y2) <= maxY {
			out.lines = append(out.lines, l)
		}
	}
	for _, r := range b.rects {
		if r.Y+r.Height <= maxY {
			out.rects = append(out.rects, r)
		}
	}
	return out
}

func clipText(t TextBox, maxY float64) (TextBox, bool) {
	y := t.Y
	var kept []TextLine
	for _, l := range t.Lines {
		if y+l.Height > maxY {
			break
		}
		kept = append(kept, l)
		y += l.Height
	}
	if len(kept) == 0 {
		return TextBox{}, false
	}
	contents := make([]string, len(kept))
	for i, l := range kept {
		contents[i] = l.Content
	}
	t.Lines = kept
	t.Content = strings.Join(contents, "\n")
	t.Height = y - t.Y
	return t, true
}

type pageCollector struct {
	variant Variant
	ink     Color
	accs    []*Page
	state   State
	// card 是正在排版的卡片名，seq 为其序号；pageSeq 是当前页最后登记的卡片序号。
	card    string
	seq     int
	pageSeq int
	// overflowed 表示当前页放了一个超高块，下一个块必须换页。
	overflowed bool
}

func newPageCollector(v Variant, res ResourceSet) *pageCollector {
	pc := &pageCollector{variant: v, ink: res.Colors[ColorInk]}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *Page {
	p := &Page{Width: pc.variant.Width, Height: pc.variant.Height, Margin: pc.variant.Margin}
	pc.accs = append(pc.accs, p)
	pc.state = pc.variant.Start()
	pc.overflowed = false
	pc.pageSeq = 0
	return p
}

func (pc *pageCollector) curr() *Page {
	return pc.accs[len(pc.accs)-1]
}

func (pc *pageCollector) pageBreak() {
	pc.curr().Cursor = pc.state.Y
	pc.newPage()
}

// startCard 为新卡片分配位置：本页卡片数已满时换页，否则在已有内容下方画分隔线。
// 分隔线和卡片的第一个块（高度 first）必须一起放得下，否则换页，页尾不会留下孤立的分隔线。
func (pc *pageCollector) startCard(name string, first float64) {
	switch {
	case pc.overflowed || len(pc.curr().Cards) >= pc.variant.CardsPerPage:
		pc.pageBreak()
	case !pc.state.AtTop():
		if !pc.state.Fits(dividerWidth + first) {
			pc.pageBreak()
			break
		}
		y := pc.state.Y + dividerWidth/2
		pc.curr().Lines = append(pc.curr().Lines, Line{
			X1: pc.state.X, Y1: y, X2: pc.state.MaxX, Y2: y,
			Color: pc.ink, Width: dividerWidth,
		})
		pc.state = pc.state.Advance(dividerWidth)
	}
	pc.card = name
	pc.seq++
}

// place 放置一个块。块放不下且本页已有内容时先换页；
// 在空白页上仍放不下的块独占一页并标记 Overflow，超出部分由渲染器裁切。
func (pc *pageCollector) place(b block) {
	if pc.overflowed || (!pc.state.Fits(b.height) && !pc.state.AtTop()) {
		pc.pageBreak()
	}
	p := pc.curr()
	if !pc.state.Fits(b.height) {
		p.Overflow = true
		pc.overflowed = true
	}
	if pc.seq > 0 && pc.pageSeq != pc.seq {
		p.Cards = append(p.Cards, pc.card)
		pc.pageSeq = pc.seq
	}

	moved := b.at(pc.state.X, pc.state.Y)
	if p.Overflow {
		moved = moved.clip(pc.state.MaxY)
	}
	p.Texts = append(p.Texts, moved.texts...)
	p.Tables = append(p.Tables, moved.tables...)
	p.Lines = append(p.Lines, moved.lines...)
	p.Rects = append(p.Rects, moved.rects...)
	pc.state = pc.state.Advance(b.height)
}

func (pc *pageCollector) pages() []Page {
	pc.curr().Cursor = pc.state.Y
	out := make([]Page, len(pc.accs))
	for i, p := range pc.accs {
		out[i] = *p
	}
	return out
}
