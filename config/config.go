// Package config 读取命令行配置：先读环境变量，再由命令行参数覆盖。
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/ByLCY/datacards/layout"
)

// Config holds generation options for a single roster.
type Config struct {
	BigCards       bool          `env:"DATACARDS_BIG_CARDS"`
	SkipDuplicates bool          `env:"DATACARDS_SKIP_DUPLICATES"`
	Tracking       bool          `env:"DATACARDS_TRACKING"`
	ReferenceRules bool          `env:"DATACARDS_REFERENCE_RULES" envDefault:"true"`
	Destination    string        `env:"DATACARDS_DESTINATION"`
	Template       string        `env:"DATACARDS_TEMPLATE"`
	Timeout        time.Duration `env:"DATACARDS_TIMEOUT"         envDefault:"180s"`
	Debug          string        `env:"DATACARDS_DEBUG"`

	// Input 是位置参数中的 roster 文件路径。
	Input string
}

// ErrMissingInput 表示命令行没有给出 roster 文件。
var ErrMissingInput = errors.New("roster file path is required")

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfig parses env then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	BindFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Input = fs.Arg(0)
	if cfg.Input == "" {
		return Config{}, ErrMissingInput
	}
	if cfg.Destination == "" {
		cfg.Destination = DefaultDestination()
	}
	return cfg, nil
}

// BindFlags registers flags whose defaults are the values already in cfg.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.BigCards, "big", cfg.BigCards, "每页一张大卡片")
	fs.BoolVar(&cfg.SkipDuplicates, "dedupe", cfg.SkipDuplicates, "相同单位只输出一张卡片")
	fs.BoolVar(&cfg.Tracking, "tracking", cfg.Tracking, "附加战役追踪填写框")
	fs.BoolVar(&cfg.ReferenceRules, "reference", cfg.ReferenceRules, "在卡片中附带规则正文（每份文档一次）")
	fs.StringVar(&cfg.Destination, "out", cfg.Destination, "输出路径前缀（生成 <out>.pdf 与 <out>-summary.png）")
	fs.StringVar(&cfg.Template, "template", cfg.Template, "卡片模板文件，留空使用内建模板")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "整体超时")
	fs.StringVar(&cfg.Debug, "debug", cfg.Debug, "布局调试 JSON 输出路径")
}

// DefaultDestination 返回系统临时目录下的随机输出前缀。
func DefaultDestination() string {
	return filepath.Join(os.TempDir(), uuid.NewString())
}

// LayoutOptions maps the config onto layout options.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		BigCards:       c.BigCards,
		Tracking:       c.Tracking,
		ReferenceRules: c.ReferenceRules,
	}
}
