// Package document 把布局结果渲染成最终文件：卡片 PDF 与概览 PNG。
package document

import (
	"os"
	"path/filepath"

	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/layout"
	"github.com/ByLCY/datacards/renderer"
)

// Artifacts 记录生成的文件路径。概览失败时 Summary 为空、SummaryErr 记录原因。
type Artifacts struct {
	List       string
	Summary    string
	SummaryErr error
}

// Map returns the artifact references keyed by kind.
func (a Artifacts) Map() map[string]string {
	out := map[string]string{"list": a.List}
	if a.Summary != "" {
		out["summary"] = a.Summary
	}
	return out
}

// ListPath returns the PDF path for a destination prefix.
func ListPath(dest string) string { return dest + ".pdf" }

// SummaryPath returns the summary image path for a destination prefix.
func SummaryPath(dest string) string { return dest + "-summary.png" }

// Assembler renders and writes the artifacts of one roster.
type Assembler struct {
	Renderer renderer.Renderer
}

// Assemble 渲染 PDF 与概览图并原子写入 dest 前缀下。
// 卡片列表失败时不留下任何文件；概览失败只记录在 Artifacts.SummaryErr 中。
func (a *Assembler) Assemble(result *layout.Result, summary *layout.Page, summaryErr error, dest string) (Artifacts, error) {
	if a == nil || a.Renderer == nil {
		return Artifacts{}, apperrors.New(apperrors.KindRender, "未配置渲染器")
	}
	if dest == "" {
		return Artifacts{}, apperrors.New(apperrors.KindResource, "输出路径为空")
	}
	pdfBytes, err := a.Renderer.Render(result)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			err = apperrors.Render("渲染 PDF 失败", err)
		}
		return Artifacts{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Artifacts{}, apperrors.Resource("创建输出目录失败", err)
	}
	list := ListPath(dest)
	if err := writeAtomic(list, pdfBytes); err != nil {
		return Artifacts{}, apperrors.Resource("写入 PDF 文件失败", err)
	}

	out := Artifacts{List: list}
	switch {
	case summaryErr != nil:
		out.SummaryErr = summaryErr
	case summary == nil:
		out.SummaryErr = apperrors.New(apperrors.KindRender, "缺少概览页")
	default:
		out.Summary, out.SummaryErr = a.writeSummary(*summary, SummaryPath(dest))
	}
	return out, nil
}

func (a *Assembler) writeSummary(page layout.Page, path string) (string, error) {
	img, err := a.Renderer.RenderImage(page)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(path, img); err != nil {
		return "", apperrors.Resource("写入概览图失败", err)
	}
	return path, nil
}

// writeAtomic 先写入同目录下的临时文件再重命名，读者不会看到写了一半的文件。
func writeAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".datacards-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
