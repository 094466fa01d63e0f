package layout

import (
	"github.com/ByLCY/datacards/binding"
	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/roster"
)

// SummaryData 是概览标题模板可用的字段。
func SummaryData(r *roster.Roster) map[string]any {
	if r == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    r.Name,
		"faction": r.Faction,
		"system":  r.GameSystem,
		"points":  r.Points,
		"pl":      r.PowerLevel,
	}
}

// Summarize 生成概览页：一行标题加每个（单位, 数量）一行。
// 页面宽度由模板固定，高度随内容增长。
func Summarize(entries []roster.Entry, r *roster.Roster, tpl *Template) (Page, error) {
	if tpl == nil {
		return Page{}, apperrors.New(apperrors.KindRender, "未提供卡片模板")
	}
	s := tpl.Summary
	if s.Width <= 2*s.Margin || s.FontSize <= 0 {
		return Page{}, apperrors.WithMetadata(apperrors.KindRender, "概览尺寸无效", map[string]string{"section": "summary"})
	}
	cc := &cardComposer{res: tpl.Resources, width: s.Width - 2*s.Margin}

	page := Page{Width: s.Width, Margin: Margin{Top: s.Margin, Right: s.Margin, Bottom: s.Margin, Left: s.Margin}}
	y := s.Margin
	title := cc.text(binding.Interpolate(s.Title, SummaryData(r)), FontHeading, s.FontSize*1.25, s.Margin, y, cc.width)
	page.Texts = append(page.Texts, title)
	y += title.Height + blockGap
	page.Lines = append(page.Lines, Line{X1: s.Margin, Y1: y - blockGap/2, X2: s.Width - s.Margin, Y2: y - blockGap/2, Color: tpl.Resources.Colors[ColorInk], Width: 1})

	for _, e := range entries {
		if e.Unit == nil {
			continue
		}
		tb := cc.text(binding.Interpolate(s.Line, HeaderData(e)), FontBody, s.FontSize, s.Margin, y, cc.width)
		page.Texts = append(page.Texts, tb)
		y += tb.Height
		page.Cards = append(page.Cards, e.Unit.Name)
	}
	page.Cursor = y
	page.Height = y + s.Margin
	return page, nil
}
