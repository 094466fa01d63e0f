package canvasrenderer

import (
	"bytes"
	"testing"

	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/layout"
	"github.com/ByLCY/datacards/templates"
)

func openDefault(t *testing.T) (*Renderer, *layout.Template) {
	t.Helper()
	tpl, err := layout.ParseTemplate(templates.Default)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	r, err := Open(Options{Resources: tpl.Resources})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return r, tpl
}

func samplePage(tpl *layout.Template) layout.Page {
	ink := tpl.Resources.Colors[layout.ColorInk]
	muted := tpl.Resources.Colors[layout.ColorMuted]
	return layout.Page{
		Width:  300,
		Height: 200,
		Texts: []layout.TextBox{{
			Content: "TACTICAL SQUAD x2 - 185 pts", X: 20, Y: 20, Width: 260,
			LineHeight: 13, Font: layout.FontHeading, FontSize: 11, Color: ink, Height: 13,
			Lines: []layout.TextLine{{Content: "TACTICAL SQUAD x2 - 185 pts", Height: 13}},
		}},
		Tables: []layout.TableBox{{
			X: 20, Y: 40, Width: 120, ColumnWidths: []float64{60, 60},
			BorderColor: ink, HeaderFill: &muted,
			Rows: []layout.TableRow{
				{Y: 40, Height: 12, IsHeader: true, Cells: []layout.TableCell{
					{Text: layout.TextBox{Content: "Model", X: 21.5, Y: 41.5, Font: layout.FontBody, FontSize: 8, LineHeight: 10}},
					{Text: layout.TextBox{Content: "M", X: 81.5, Y: 41.5, Width: 57, Font: layout.FontBody, FontSize: 8, LineHeight: 10, Align: "center"}},
				}},
				{Y: 52, Height: 12, Cells: []layout.TableCell{
					{Text: layout.TextBox{Content: "Marine", X: 21.5, Y: 53.5, Font: layout.FontBody, FontSize: 8, LineHeight: 10}},
					{Text: layout.TextBox{Content: "6\"", X: 81.5, Y: 53.5, Font: layout.FontBody, FontSize: 8, LineHeight: 10}},
				}},
			},
		}},
		Lines: []layout.Line{{X1: 20, Y1: 100, X2: 280, Y2: 100, Color: ink, Width: 2}},
		Rects: []layout.Rect{{X: 20, Y: 110, Width: 40, Height: 12, StrokeColor: ink, StrokeWidth: 0.5}},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r, tpl := openDefault(t)
	defer r.Close()

	page := samplePage(tpl)
	out, err := r.Render(&layout.Result{
		Pages:     []layout.Page{page, page},
		Resources: tpl.Resources,
		Meta:      layout.DocumentMeta{Title: "Patrol", Creator: "datacards"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", out[:min(len(out), 8)])
	}
}

func TestRenderImageProducesPNG(t *testing.T) {
	r, tpl := openDefault(t)
	defer r.Close()

	out, err := r.RenderImage(samplePage(tpl))
	if err != nil {
		t.Fatalf("render image: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("expected a PNG signature")
	}
}

func TestRenderErrors(t *testing.T) {
	r, tpl := openDefault(t)

	if _, err := r.Render(&layout.Result{}); !apperrors.IsKind(err, apperrors.KindRender) {
		t.Fatalf("empty result should be a render error, got %v", err)
	}
	if _, err := r.RenderImage(layout.Page{}); !apperrors.IsKind(err, apperrors.KindRender) {
		t.Fatalf("zero-sized page should be a render error, got %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := r.RenderImage(samplePage(tpl)); !apperrors.IsKind(err, apperrors.KindRender) {
		t.Fatalf("closed session should refuse to render, got %v", err)
	}
}

func TestOpenRejectsMissingFont(t *testing.T) {
	res := layout.ResourceSet{Fonts: map[string]layout.FontResource{
		layout.FontBody: {Name: layout.FontBody, Src: "builtin:does-not-exist", Base: "does-not-exist", IsBuiltin: true},
	}}
	if _, err := Open(Options{Resources: res}); !apperrors.IsKind(err, apperrors.KindRender) {
		t.Fatalf("unknown builtin font should be a render error, got %v", err)
	}

	res.Fonts[layout.FontBody] = layout.FontResource{Name: layout.FontBody, Src: "fonts/missing.otf"}
	if _, err := Open(Options{Resources: res, BaseDir: t.TempDir()}); !apperrors.IsKind(err, apperrors.KindRender) {
		t.Fatalf("missing font file should be a render error, got %v", err)
	}

	if _, err := Open(Options{}); !apperrors.IsKind(err, apperrors.KindRender) {
		t.Fatalf("no fonts at all should be a render error, got %v", err)
	}
}
