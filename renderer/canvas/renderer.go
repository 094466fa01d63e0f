package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/fonts"
	"github.com/ByLCY/datacards/layout"
	"github.com/ByLCY/datacards/renderer"
)

const (
	tableBorderWidth = 0.2 // mm
	// DefaultDPI 是概览图的默认栅格化分辨率。
	DefaultDPI = 144.0
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// 字体在 Open 时一次性加载，Close 释放；布局坐标为 pt，在这里统一换算为 canvas 使用的 mm。
type Renderer struct {
	baseDir string
	dpi     float64

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
	closed       bool
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	// BaseDir 用于解析模板中以相对路径声明的字体。
	BaseDir string
	// Resources 中声明的全部字体都会在 Open 时加载。
	Resources layout.ResourceSet
	// DPI 是 RenderImage 的分辨率，<=0 时使用 DefaultDPI。
	DPI float64
}

// Open 创建一次渲染会话并加载全部字体，任何字体失败都返回 RenderError。
func Open(opts Options) (*Renderer, error) {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		dpi:          opts.DPI,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.dpi <= 0 {
		r.dpi = DefaultDPI
	}
	names := make([]string, 0, len(opts.Resources.Fonts))
	for name := range opts.Resources.Fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		font := opts.Resources.Fonts[name]
		family := canvas.NewFontFamily(familyName(font))
		data, err := r.loadFontBytes(font)
		if err == nil {
			err = family.LoadFont(data, 0, canvas.FontRegular)
		}
		if err != nil {
			return nil, &apperrors.Error{
				Kind:     apperrors.KindRender,
				Message:  "加载字体失败",
				Metadata: map[string]string{"font": name, "src": font.Src},
				Cause:    err,
			}
		}
		r.fontFamilies[name] = family
	}
	if len(r.fontFamilies) == 0 {
		return nil, apperrors.New(apperrors.KindRender, "没有可用的字体")
	}
	return r, nil
}

// Close 释放会话持有的字体，之后的渲染调用会失败。
func (r *Renderer) Close() error {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	r.fontFamilies = nil
	r.closed = true
	return nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, apperrors.New(apperrors.KindRender, "渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, apperrors.New(apperrors.KindRender, "缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c, err := r.drawCanvas(page, false)
		if err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, apperrors.Render("写入 PDF 失败", err)
	}
	return buf.Bytes(), nil
}

// RenderImage 把单页（概览）栅格化为 PNG。
func (r *Renderer) RenderImage(page layout.Page) ([]byte, error) {
	// 概览图需要白底，PDF 页面保持透明
	c, err := r.drawCanvas(page, true)
	if err != nil {
		return nil, err
	}
	img := rasterizer.Draw(c, canvas.DPI(r.dpi), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.Render("编码 PNG 失败", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawCanvas(page layout.Page, background bool) (*canvas.Canvas, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, apperrors.WithMetadata(apperrors.KindRender, "页面尺寸无效",
			map[string]string{"size": fmt.Sprintf("%gx%g", page.Width, page.Height)})
	}
	c := canvas.New(toMm(page.Width), toMm(page.Height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	if background {
		ctx.SetFillColor(canvas.White)
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(toMm(page.Width), toMm(page.Height)))
	}
	if err := r.drawPage(ctx, page); err != nil {
		return nil, err
	}
	return c, nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	// 背景形状（线、矩形）在文本之前绘制
	r.drawLines(ctx, page.Lines)
	r.drawRects(ctx, page.Rects)
	if err := r.drawTables(ctx, page.Tables); err != nil {
		return err
	}
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	face, err := r.fontFace(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Height: tb.LineHeight}}
	}

	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	// 基线位置：行顶部加上字体上升部（字体度量已是 mm）
	ascent := face.Metrics().Ascent
	cursorY := tb.Y
	for _, line := range lines {
		lineHeight := line.Height
		if lineHeight <= 0 {
			lineHeight = tb.LineHeight
		}
		if line.Content != "" {
			ctx.DrawText(toMm(anchorX), toMm(cursorY)+ascent, canvas.NewTextLine(face, line.Content, textAlign))
		}
		cursorY += lineHeight
	}
	return nil
}

func (r *Renderer) drawTables(ctx *canvas.Context, tables []layout.TableBox) error {
	for _, table := range tables {
		if len(table.ColumnWidths) == 0 {
			continue
		}
		for _, row := range table.Rows {
			x := table.X
			for idx, cell := range row.Cells {
				colIdx := idx
				if colIdx >= len(table.ColumnWidths) {
					colIdx = len(table.ColumnWidths) - 1
				}
				colWidth := table.ColumnWidths[colIdx]
				var fill color.Color = canvas.White
				if row.IsHeader && table.HeaderFill != nil {
					fill = colorFromLayout(*table.HeaderFill)
				}
				ctx.SetFillColor(fill)
				ctx.SetStrokeColor(colorFromLayout(table.BorderColor))
				ctx.SetStrokeWidth(tableBorderWidth)
				ctx.DrawPath(toMm(x), toMm(row.Y), canvas.Rectangle(toMm(colWidth), toMm(row.Height)))

				if err := r.drawTextBox(ctx, cell.Text); err != nil {
					return err
				}
				x += colWidth
			}
		}
	}
	return nil
}

// drawLines 绘制直线列表，线宽为 pt。
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := toMm(ln.Width)
		if w <= 0 {
			w = tableBorderWidth
		}
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
		ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), p)
	}
}

// drawRects 绘制矩形
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := toMm(rc.StrokeWidth)
		if w <= 0 {
			w = tableBorderWidth
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(canvas.Transparent)
		}
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
	}
}

// fontFace 以 pt 字号创建字体面；未声明的字体退回 Body。
func (r *Renderer) fontFace(name string, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.closed {
		return nil, apperrors.New(apperrors.KindRender, "渲染会话已关闭")
	}
	family, ok := r.fontFamilies[name]
	if !ok {
		family, ok = r.fontFamilies[layout.FontBody]
	}
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.KindRender, "找不到字体", map[string]string{"font": name})
	}
	if sizePt <= 0 {
		sizePt = 10
	}
	return family.Face(sizePt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if font.IsBuiltin || strings.HasPrefix(src, "builtin:") {
		return fonts.Load(src)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func familyName(font layout.FontResource) string {
	switch {
	case font.Family != "":
		return font.Family
	case font.Name != "":
		return font.Name
	default:
		return layout.FontBody
	}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
