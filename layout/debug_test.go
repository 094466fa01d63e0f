package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/datacards/roster"
)

func TestWriteDebugJSON(t *testing.T) {
	r := testRoster(squad("Tactical Squad", "Meltagun", 90))
	entries := roster.Expand(r.Units)
	tpl := defaultTemplate(t)
	res, err := Build(entries, r, tpl, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	summary, err := Summarize(entries, r, tpl)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	path := filepath.Join(t.TempDir(), "debug", "layout.json")
	if err := WriteDebugJSON(res, &summary, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var dump struct {
		Result  Result `json:"result"`
		Summary *Page  `json:"summary"`
	}
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dump.Result.Variant != "compact" || len(dump.Result.Pages) != len(res.Pages) {
		t.Fatalf("unexpected dump: %+v", dump.Result)
	}
	if dump.Summary == nil || len(dump.Summary.Texts) != 2 {
		t.Fatalf("summary page should be included")
	}

	if err := WriteDebugJSON(nil, nil, path); err != nil {
		t.Fatalf("nil result should be a no-op: %v", err)
	}
}
