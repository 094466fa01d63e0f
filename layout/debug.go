package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type debugDump struct {
	Result  *Result `json:"result"`
	Summary *Page   `json:"summary,omitempty"`
}

// WriteDebugJSON 将卡片布局与概览页输出为 JSON，便于核对分页与坐标。
func WriteDebugJSON(res *Result, summary *Page, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(debugDump{Result: res, Summary: summary}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
