package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/datacards/dsl"
	"github.com/ByLCY/datacards/templates"
)

const sampleDSL = `
doc Cards v1 {
  meta {
    title: "Roster"
    keywords: [
      "crusade"
      "print"
    ]
  }

  resources {
    font Body {
      src: "builtin:lmroman10-regular"
    }

    color Ink = #0F62FE
  }

  variant compact {
    page A4 landscape margin 18mm
    cards: 2
    size: 8pt
    header: "${name|upper}${count|times}"
  }

  summary {
    width: 540pt
    line: "${name}"
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Cards" || doc.Version != "v1" {
		t.Fatalf("unexpected document header: %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(doc.Sections))
	}
	kinds := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "meta,resources,variant,summary" {
		t.Fatalf("unexpected section kinds: %s", got)
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" || title.Value.Raw() != "Roster" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected keywords array with 2 entries")
	}

	resources := doc.Sections[1].Resources
	font := resources.Block.Statements[0].Command
	if font == nil || font.Name != "font" || len(font.Args) != 1 || font.Args[0].Value != "Body" {
		t.Fatalf("unexpected font declaration: %+v", resources.Block.Statements[0])
	}
	if font.Block == nil || font.Block.Statements[0].Assignment.Value.Raw() != "builtin:lmroman10-regular" {
		t.Fatalf("font body missing src")
	}
	color := resources.Block.Statements[1].Command
	if color == nil || len(color.Args) != 3 || color.Args[2].Type != "Color" || color.Args[2].Value != "#0F62FE" {
		t.Fatalf("unexpected color declaration: %+v", color)
	}

	variant := doc.Sections[2].Variant
	if variant.Name != "compact" {
		t.Fatalf("expected variant compact, got %s", variant.Name)
	}
	page := variant.Block.Statements[0].Command
	if page == nil || page.Name != "page" || len(page.Args) != 4 {
		t.Fatalf("unexpected page command: %+v", variant.Block.Statements[0])
	}
	if page.Args[0].Value != "A4" || page.Args[1].Value != "landscape" || page.Args[3].Value != "18mm" {
		t.Fatalf("unexpected page args: %+v", page.Args)
	}
	size := variant.Block.Statements[2].Assignment
	if size == nil || size.Value.Number == nil || *size.Value.Number != "8pt" {
		t.Fatalf("expected size 8pt, got %+v", variant.Block.Statements[2])
	}
	header := variant.Block.Statements[3].Assignment
	if header == nil || !strings.Contains(header.Value.Raw(), "${count|times}") {
		t.Fatalf("header template should keep interpolation markers, got %+v", header)
	}

	summary := doc.Sections[3].Summary
	if len(summary.Block.Statements) != 2 {
		t.Fatalf("expected 2 summary statements, got %d", len(summary.Block.Statements))
	}
}

func TestParseBuiltinTemplate(t *testing.T) {
	doc, err := dsl.ParseString(templates.Default)
	if err != nil {
		t.Fatalf("builtin template should parse: %v", err)
	}
	var variants []string
	for _, s := range doc.Sections {
		if s.Variant != nil {
			variants = append(variants, s.Variant.Name)
		}
	}
	if strings.Join(variants, ",") != "compact,big" {
		t.Fatalf("unexpected variants: %v", variants)
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	if _, err := dsl.ParseString("doc X v1 {\n  page A4 {\n  }\n}\n"); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}
