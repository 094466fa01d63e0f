// Package pipeline 串联一次生成：解析 roster、去重、排版、概览与写出文件。
package pipeline

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/ByLCY/datacards/config"
	"github.com/ByLCY/datacards/document"
	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/layout"
	canvasrenderer "github.com/ByLCY/datacards/renderer/canvas"
	"github.com/ByLCY/datacards/ros"
	"github.com/ByLCY/datacards/roster"
	"github.com/ByLCY/datacards/templates"
)

// Template 是解析好的卡片模板，BaseDir 用于解析模板里的相对字体路径。
type Template struct {
	*layout.Template
	BaseDir string
}

// LoadTemplate 读取模板文件；path 为空时使用内建模板。
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		tpl, err := layout.ParseTemplate(templates.Default)
		if err != nil {
			return Template{}, err
		}
		return Template{Template: tpl}, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Template{}, apperrors.Render("读取卡片模板失败", err)
	}
	tpl, err := layout.ParseTemplate(string(src))
	if err != nil {
		return Template{}, err
	}
	return Template{Template: tpl, BaseDir: filepath.Dir(path)}, nil
}

// Output 汇总一次运行的产物。
type Output struct {
	Artifacts document.Artifacts
	Layout    *layout.Result
	Summary   *layout.Page
	Roster    *roster.Roster
}

// Run 处理一份已解压的 roster XML。解析或卡片列表失败时不产出任何文件；
// 概览失败不影响卡片列表，原因记录在 Artifacts.SummaryErr。
func Run(input []byte, cfg config.Config, tpl Template) (Output, error) {
	if tpl.Template == nil {
		return Output{}, apperrors.New(apperrors.KindRender, "未提供卡片模板")
	}
	r, err := ros.Parse(bytes.NewReader(input), ros.Options{Tracking: cfg.Tracking})
	if err != nil {
		return Output{}, err
	}

	entries := roster.Expand(r.Units)
	if cfg.SkipDuplicates {
		entries = roster.Collapse(r.Units)
	}

	rend, err := canvasrenderer.Open(canvasrenderer.Options{
		BaseDir:   tpl.BaseDir,
		Resources: tpl.Resources,
	})
	if err != nil {
		return Output{Roster: r}, err
	}
	defer rend.Close()

	result, err := layout.Build(entries, r, tpl.Template, cfg.LayoutOptions())
	if err != nil {
		return Output{Roster: r}, err
	}

	var summary *layout.Page
	page, summaryErr := layout.Summarize(entries, r, tpl.Template)
	if summaryErr == nil {
		summary = &page
	}

	asm := &document.Assembler{Renderer: rend}
	artifacts, err := asm.Assemble(result, summary, summaryErr, cfg.Destination)
	if err != nil {
		return Output{Layout: result, Summary: summary, Roster: r}, err
	}
	return Output{Artifacts: artifacts, Layout: result, Summary: summary, Roster: r}, nil
}
