package roster

import (
	"sort"
	"strconv"
	"strings"
)

// Entry 是排版与汇总使用的 (单位, 数量) 对。Points 为折叠进来的所有单位点数之和。
type Entry struct {
	Unit   *Unit
	Count  int
	Points int
}

// Expand maps every unit to its own entry with count 1.
func Expand(units []Unit) []Entry {
	out := make([]Entry, 0, len(units))
	for i := range units {
		out = append(out, Entry{Unit: &units[i], Count: 1, Points: units[i].Points})
	}
	return out
}

// Collapse folds structurally identical units into one entry, keeping the
// order in which each signature was first seen. Points do not take part in
// the comparison.
func Collapse(units []Unit) []Entry {
	index := map[string]int{}
	var out []Entry
	for i := range units {
		sig := Signature(units[i])
		if at, ok := index[sig]; ok {
			out[at].Count++
			out[at].Points += units[i].Points
			continue
		}
		index[sig] = len(out)
		out = append(out, Entry{Unit: &units[i], Count: 1, Points: units[i].Points})
	}
	return out
}

// Signature 生成单位的结构签名：名称 + 每个模型的 (名称, 数量, 排序后的武器名多重集)
// 的多重集 + 单位级装备名。装备顺序与点数不参与比较。
func Signature(u Unit) string {
	models := make([]string, 0, len(u.Models))
	for _, m := range u.Models {
		models = append(models, quote(m.Name)+"*"+strconv.Itoa(m.Count)+"["+weaponNames(m.Weapons)+"]")
	}
	sort.Strings(models)

	var b strings.Builder
	b.WriteString(quote(u.Name))
	b.WriteString("{")
	b.WriteString(strings.Join(models, ","))
	b.WriteString("}[")
	b.WriteString(weaponNames(u.Wargear))
	b.WriteString("]")
	return b.String()
}

func weaponNames(ws []Weapon) string {
	names := make([]string, 0, len(ws))
	for _, w := range ws {
		n := w.Count
		if n <= 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			names = append(names, quote(w.Name))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func quote(s string) string { return strconv.Quote(s) }
