// Package binding 负责把模板文本中的 ${path|filter} 占位符替换为数据。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Filter 对解析出的值做一次格式化。
type Filter func(v any) string

var (
	upper   = cases.Upper(language.English)
	printer = message.NewPrinter(language.English)
)

// Filters 是可在占位符中以 | 串联使用的过滤器。
var Filters = map[string]Filter{
	// upper 将文本转为大写。
	"upper": func(v any) string { return upper.String(fmt.Sprint(v)) },
	// pts 以千位分隔符输出整数点数，例如 1,250。
	"pts": func(v any) string {
		n, ok := toInt(v)
		if !ok {
			return fmt.Sprint(v)
		}
		return printer.Sprintf("%d", n)
	},
	// times 输出 " x3" 形式的数量后缀，数量为 1 时为空。
	"times": func(v any) string {
		n, ok := toInt(v)
		if !ok || n <= 1 {
			return ""
		}
		return " x" + strconv.Itoa(n)
	},
}

// Interpolate 将文本中的 ${path.to.value|filter} 替换为 data 中的值。
// 若 data 为空、路径不存在或过滤器未知，则返回原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		parts := strings.Split(groups[1], "|")
		path := strings.TrimSpace(parts[0])
		if path == "" {
			return match
		}
		val, ok := resolvePath(data, path)
		if !ok {
			return match
		}
		for _, name := range parts[1:] {
			f, ok := Filters[strings.TrimSpace(name)]
			if !ok {
				return match
			}
			val = f(val)
		}
		return fmt.Sprint(val)
	})
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
