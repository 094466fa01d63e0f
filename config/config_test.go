package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("datacards", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(newFlagSet(), []string{"army.rosz"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.BigCards || cfg.SkipDuplicates || cfg.Tracking {
		t.Fatalf("boolean options should default to false: %+v", cfg)
	}
	if !cfg.ReferenceRules {
		t.Fatalf("reference rules should default to true")
	}
	if cfg.Timeout != 180*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.Input != "army.rosz" {
		t.Fatalf("unexpected input %q", cfg.Input)
	}
	if filepath.Dir(cfg.Destination) != filepath.Clean(os.TempDir()) || filepath.Base(cfg.Destination) == "" {
		t.Fatalf("destination should live in the temp dir, got %q", cfg.Destination)
	}
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("DATACARDS_BIG_CARDS", "true")
	t.Setenv("DATACARDS_REFERENCE_RULES", "false")
	t.Setenv("DATACARDS_DESTINATION", "/tmp/from-env")
	t.Setenv("DATACARDS_TIMEOUT", "30s")

	cfg, err := ParseConfig(newFlagSet(), []string{"-out", "/tmp/from-flag", "-tracking", "-dedupe", "army.ros"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.BigCards || cfg.ReferenceRules {
		t.Fatalf("env values should apply: %+v", cfg)
	}
	if cfg.Destination != "/tmp/from-flag" {
		t.Fatalf("flag should override env, got %q", cfg.Destination)
	}
	if !cfg.Tracking || !cfg.SkipDuplicates || cfg.Timeout != 30*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	opts := cfg.LayoutOptions()
	if !opts.BigCards || !opts.Tracking || opts.ReferenceRules {
		t.Fatalf("unexpected layout options: %+v", opts)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig(newFlagSet(), nil); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected missing input error, got %v", err)
	}

	t.Setenv("DATACARDS_TIMEOUT", "soon")
	if _, err := ParseConfig(newFlagSet(), []string{"army.ros"}); err == nil {
		t.Fatalf("invalid duration in env should fail")
	}
}

func TestDefaultDestinationIsUnique(t *testing.T) {
	if DefaultDestination() == DefaultDestination() {
		t.Fatalf("destinations should not repeat")
	}
}
