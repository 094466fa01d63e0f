package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/datacards/dsl"
	apperrors "github.com/ByLCY/datacards/errors"
)

// 卡片模板中约定的字体与颜色名。
const (
	FontBody    = "Body"
	FontHeading = "Heading"
	ColorInk    = "Ink"
	ColorMuted  = "Muted"
)

// Template 是从 .cards 模板转换出的排版参数。
type Template struct {
	Meta      DocumentMeta
	Resources ResourceSet
	Variants  map[string]Variant
	Summary   SummaryStyle
}

// Variant 描述一种卡片密度的页面尺寸、字号与每页卡数（尺寸单位 pt）。
type Variant struct {
	Name         string  `json:"name"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Margin       Margin  `json:"margin"`
	CardsPerPage int     `json:"cardsPerPage"`
	FontSize     float64 `json:"fontSize"`
	HeadingSize  float64 `json:"headingSize"`
	Header       string  `json:"header"`
}

// Start returns the cursor at the top-left of an empty page.
func (v Variant) Start() State {
	return State{
		X:    v.Margin.Left,
		Y:    v.Margin.Top,
		Top:  v.Margin.Top,
		MaxX: v.Width - v.Margin.Right,
		MaxY: v.Height - v.Margin.Bottom,
	}
}

// SummaryStyle 描述概览图：固定宽度，高度随内容增长。
type SummaryStyle struct {
	Width    float64 `json:"width"`
	Margin   float64 `json:"margin"`
	FontSize float64 `json:"fontSize"`
	Title    string  `json:"title"`
	Line     string  `json:"line"`
}

// ParseTemplate 解析模板源码并转换为 Template。
func ParseTemplate(src string) (*Template, error) {
	doc, err := dsl.ParseString(src)
	if err != nil {
		return nil, apperrors.Render("解析卡片模板失败", err)
	}
	return LoadTemplate(doc)
}

// LoadTemplate 把模板 AST 转换为排版参数。
func LoadTemplate(doc *dsl.Document) (*Template, error) {
	if doc == nil {
		return nil, apperrors.New(apperrors.KindRender, "卡片模板为空")
	}
	tpl := &Template{
		Meta:      collectMeta(doc),
		Resources: collectResources(doc),
		Variants:  map[string]Variant{},
		Summary:   SummaryStyle{Width: 540, Margin: 25, FontSize: 12, Title: "${name}", Line: "${name}${count|times}"},
	}
	for _, section := range doc.Sections {
		switch {
		case section.Variant != nil:
			v, err := parseVariant(section.Variant)
			if err != nil {
				return nil, err
			}
			tpl.Variants[v.Name] = v
		case section.Summary != nil:
			parseSummary(section.Summary.Block, &tpl.Summary)
		}
	}
	return tpl, nil
}

// Variant 返回密度对应的变体，模板未声明时返回 RenderError。
func (t *Template) Variant(d Density) (Variant, error) {
	v, ok := t.Variants[d.String()]
	if !ok {
		return Variant{}, apperrors.WithMetadata(apperrors.KindRender,
			"卡片模板缺少变体", map[string]string{"variant": d.String()})
	}
	return v, nil
}

func parseVariant(sec *dsl.VariantSection) (Variant, error) {
	v := Variant{Name: sec.Name, CardsPerPage: 1, FontSize: 8, Header: "${name}"}
	var hasPage bool
	if sec.Block != nil {
		for _, stmt := range sec.Block.Statements {
			switch {
			case stmt.Command != nil && stmt.Command.Name == "page":
				w, h, err := resolvePageSize(stmt.Command.Args)
				if err != nil {
					return Variant{}, apperrors.WithMetadata(apperrors.KindRender, err.Error(), map[string]string{"variant": sec.Name})
				}
				v.Width, v.Height = w, h
				v.Margin = resolveMargin(stmt.Command.Args)
				hasPage = true
			case stmt.Assignment != nil:
				raw := stmt.Assignment.Value.Raw()
				switch strings.ToLower(stmt.Assignment.Key) {
				case "cards":
					if n, err := strconv.Atoi(raw); err == nil {
						v.CardsPerPage = n
					}
				case "size":
					v.FontSize = parsePt(raw, v.FontSize)
				case "heading":
					v.HeadingSize = parsePt(raw, v.HeadingSize)
				case "header":
					v.Header = raw
				}
			}
		}
	}
	if !hasPage {
		return Variant{}, apperrors.WithMetadata(apperrors.KindRender, "变体缺少 page 声明", map[string]string{"variant": sec.Name})
	}
	if v.CardsPerPage < 1 || v.FontSize <= 0 {
		return Variant{}, apperrors.WithMetadata(apperrors.KindRender, "变体的卡片数或字号无效", map[string]string{"variant": sec.Name})
	}
	if v.HeadingSize <= 0 {
		v.HeadingSize = v.FontSize * 1.4
	}
	return v, nil
}

func parseSummary(block *dsl.Block, s *SummaryStyle) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		raw := stmt.Assignment.Value.Raw()
		switch strings.ToLower(stmt.Assignment.Key) {
		case "width":
			s.Width = parsePt(raw, s.Width)
		case "margin":
			s.Margin = parsePt(raw, s.Margin)
		case "size":
			s.FontSize = parsePt(raw, s.FontSize)
		case "title":
			s.Title = raw
		case "line":
			s.Line = raw
		}
	}
}

func collectResources(doc *dsl.Document) ResourceSet {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
	}
	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				if c, err := parseColor(value); err == nil {
					res.Colors[name] = c
				}
			}
		}
	}

	if _, ok := res.Fonts[FontBody]; !ok {
		res.Fonts[FontBody] = FontResource{Name: FontBody, Family: FontBody, Src: "builtin:lmroman10-regular", Base: "lmroman10-regular", IsBuiltin: true}
	}
	if _, ok := res.Fonts[FontHeading]; !ok {
		res.Fonts[FontHeading] = FontResource{Name: FontHeading, Family: FontHeading, Src: "builtin:lmroman10-bold", Base: "lmroman10-bold", IsBuiltin: true}
	}
	if _, ok := res.Colors[ColorInk]; !ok {
		res.Colors[ColorInk] = Color{}
	}
	if _, ok := res.Colors[ColorMuted]; !ok {
		res.Colors[ColorMuted] = Color{R: 230, G: 230, B: 230}
	}
	return res
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "datacards",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = stmt.Assignment.Value.Raw()
			case "author":
				meta.Author = stmt.Assignment.Value.Raw()
			case "subject":
				meta.Subject = stmt.Assignment.Value.Raw()
			case "creator":
				meta.Creator = stmt.Assignment.Value.Raw()
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
		Base:   cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil || stmt.Assignment.Key != "src" {
			continue
		}
		font.Src = stmt.Assignment.Value.Raw()
		if strings.HasPrefix(font.Src, "builtin:") {
			font.IsBuiltin = true
			font.Base = strings.TrimPrefix(font.Src, "builtin:")
		}
	}
	return font
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

// pagePresets 以 mm 记录纸张尺寸（纵向）。
var pagePresets = map[string][2]float64{
	"A4": {210, 297},
	"A5": {148, 210},
}

func resolvePageSize(args []*dsl.Lexeme) (float64, float64, error) {
	if len(args) == 0 {
		return 0, 0, fmt.Errorf("page 缺少纸张尺寸")
	}
	base, ok := pagePresets[strings.ToUpper(args[0].Value)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", args[0].Value)
	}
	width := base[0] * MmToPt
	height := base[1] * MmToPt
	for _, token := range args[1:] {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

func resolveMargin(params []*dsl.Lexeme) Margin {
	// 默认四边 25pt
	margin := Margin{Top: 25, Right: 25, Bottom: 25, Left: 25}
	for i := 0; i < len(params); i++ {
		if params[i].Value != "margin" {
			continue
		}
		var vals []float64
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			l, ok := ParseRawLengthStr(params[j].Value)
			if !ok {
				break
			}
			vals = append(vals, l.ToPT())
		}
		// 与 CSS 相同：1 个值四边相同，2 个值为上下/左右，4 个值为上右下左
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return margin
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := item.Raw(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := val.Raw(); s != "" {
		return []string{s}
	}
	return nil
}
