package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ByLCY/datacards/config"
	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/layout"
	"github.com/ByLCY/datacards/pipeline"
	"github.com/ByLCY/datacards/ros"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "用法: %s [选项] <roster.ros|roster.rosz>\n", os.Args[0])
		fs.PrintDefaults()
	}
	cfg, err := config.ParseConfig(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrMissingInput) {
			fs.Usage()
			os.Exit(2)
		}
		log.Fatalf("读取配置失败: %v", err)
	}

	// 硬性截止时间：超时直接结束进程，不做清理
	if cfg.Timeout > 0 {
		time.AfterFunc(cfg.Timeout, func() {
			log.Fatalf("生成超时（%s）", cfg.Timeout)
		})
	}

	artifacts, err := run(cfg)
	if err != nil {
		if errors.Is(err, ros.ErrUnsupportedFile) {
			fmt.Fprintln(os.Stderr, "File type is not accepted. Use .ros or .rosz.")
			os.Exit(1)
		}
		log.Fatalf("%s: %v", describe(err), err)
	}

	out, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		log.Fatalf("输出结果失败: %v", err)
	}
	fmt.Println(string(out))
}

// run 串联读取、生成与调试输出，返回 {"list","summary"} 路径表。
func run(cfg config.Config) (map[string]string, error) {
	tpl, err := pipeline.LoadTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}
	input, err := ros.ReadFile(cfg.Input)
	if err != nil {
		return nil, err
	}

	out, err := pipeline.Run(input, cfg, tpl)
	if cfg.Debug != "" && out.Layout != nil {
		if derr := layout.WriteDebugJSON(out.Layout, out.Summary, cfg.Debug); derr != nil {
			log.Printf("输出调试 JSON 失败: %v", derr)
		}
	}
	if err != nil {
		return nil, err
	}
	if out.Artifacts.SummaryErr != nil {
		log.Printf("概览图生成失败，仅输出卡片: %v", out.Artifacts.SummaryErr)
	}
	return out.Artifacts.Map(), nil
}

// describe 把错误分类转换为面向用户的说明。
func describe(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindParse:
		return "无法解析 roster 文件"
	case apperrors.KindUnsupportedSchema:
		return "不支持的 roster 格式"
	case apperrors.KindRender:
		return "生成卡片失败"
	case apperrors.KindResource:
		return "写入输出文件失败"
	default:
		return "生成失败"
	}
}
