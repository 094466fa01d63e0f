package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/layout"
)

type fakeRenderer struct {
	pdf      []byte
	png      []byte
	pdfErr   error
	imageErr error
	images   int
}

func (f *fakeRenderer) Render(*layout.Result) ([]byte, error) { return f.pdf, f.pdfErr }

func (f *fakeRenderer) RenderImage(layout.Page) ([]byte, error) {
	f.images++
	return f.png, f.imageErr
}

func (f *fakeRenderer) Close() error { return nil }

func entries(t *testing.T, dir string) []string {
	t.Helper()
	list, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range list {
		names = append(names, e.Name())
	}
	return names
}

func TestAssembleWritesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out", "army")
	fr := &fakeRenderer{pdf: []byte("%PDF-1.7"), png: []byte("\x89PNG")}
	a := &Assembler{Renderer: fr}

	got, err := a.Assemble(&layout.Result{}, &layout.Page{Width: 10, Height: 10}, nil, dest)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got.List != dest+".pdf" || got.Summary != dest+"-summary.png" || got.SummaryErr != nil {
		t.Fatalf("unexpected artifacts: %+v", got)
	}
	data, err := os.ReadFile(got.List)
	if err != nil || string(data) != "%PDF-1.7" {
		t.Fatalf("unexpected list contents %q (%v)", data, err)
	}
	m := got.Map()
	if len(m) != 2 || m["list"] != got.List || m["summary"] != got.Summary {
		t.Fatalf("unexpected map: %v", m)
	}
	if names := entries(t, filepath.Join(dir, "out")); len(names) != 2 {
		t.Fatalf("temporary files should not remain: %v", names)
	}
}

func TestAssembleSummaryDegrades(t *testing.T) {
	dir := t.TempDir()
	fr := &fakeRenderer{pdf: []byte("%PDF"), imageErr: apperrors.New(apperrors.KindRender, "boom")}
	a := &Assembler{Renderer: fr}

	got, err := a.Assemble(&layout.Result{}, &layout.Page{Width: 10, Height: 10}, nil, filepath.Join(dir, "army"))
	if err != nil {
		t.Fatalf("summary failure must not fail the list: %v", err)
	}
	if got.Summary != "" || !apperrors.IsKind(got.SummaryErr, apperrors.KindRender) {
		t.Fatalf("unexpected artifacts: %+v", got)
	}
	if _, ok := got.Map()["summary"]; ok {
		t.Fatalf("summary key should be absent")
	}

	layoutErr := errors.New("layout failed")
	got, err = a.Assemble(&layout.Result{}, nil, layoutErr, filepath.Join(dir, "again"))
	if err != nil || !errors.Is(got.SummaryErr, layoutErr) {
		t.Fatalf("summary layout error should be carried: %+v %v", got, err)
	}
	if fr.images != 1 {
		t.Fatalf("summary should not be rendered after a layout failure")
	}
}

func TestAssembleListFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	fr := &fakeRenderer{pdfErr: apperrors.New(apperrors.KindRender, "font")}
	a := &Assembler{Renderer: fr}

	got, err := a.Assemble(&layout.Result{}, &layout.Page{}, nil, filepath.Join(dir, "army"))
	if !apperrors.IsKind(err, apperrors.KindRender) {
		t.Fatalf("expected render error, got %v", err)
	}
	if got.List != "" || len(got.Map()) != 1 {
		t.Fatalf("no artifact should be referenced: %+v", got)
	}
	if names := entries(t, dir); len(names) != 0 {
		t.Fatalf("no file should be written: %v", names)
	}
	if fr.images != 0 {
		t.Fatalf("summary should not be rendered after a list failure")
	}
}

func TestAssembleWriteFailureIsResourceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	a := &Assembler{Renderer: &fakeRenderer{pdf: []byte("%PDF")}}

	// dest 的父目录是一个普通文件，无法创建
	_, err := a.Assemble(&layout.Result{}, nil, nil, filepath.Join(blocker, "army"))
	if !apperrors.IsKind(err, apperrors.KindResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
}
