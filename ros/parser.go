// Package ros 将 BattleScribe 导出的 roster 文档解析为 roster 模型。
package ros

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	apperrors "github.com/ByLCY/datacards/errors"
	"github.com/ByLCY/datacards/roster"
)

// Options 控制解析阶段的可选行为。
type Options struct {
	// Tracking 为每个单位附加空白的战役追踪计数。
	Tracking bool
}

// Parse 读取一份已解压的 roster XML 文档。
// 失败时返回 KindParse 或 KindUnsupportedSchema 的 *apperrors.Error。
func Parse(r io.Reader, opts Options) (*roster.Roster, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	schema, err := detectSchema(doc)
	if err != nil {
		return nil, err
	}
	p := &parser{schema: schema, rules: roster.NewRuleBook(), opts: opts}
	return p.roster(doc)
}

// ParseString is a convenience wrapper around Parse.
func ParseString(input string, opts Options) (*roster.Roster, error) {
	return Parse(strings.NewReader(input), opts)
}

func decode(r io.Reader) (*rosterXML, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	var doc rosterXML
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.New(apperrors.KindUnsupportedSchema, "roster 文档为空")
		}
		return nil, apperrors.Wrap(apperrors.KindParse, "解析 roster XML 失败", err)
	}
	return &doc, nil
}

type parser struct {
	schema Schema
	rules  *roster.RuleBook
	opts   Options
}

func (p *parser) roster(doc *rosterXML) (*roster.Roster, error) {
	out := &roster.Roster{
		Name:       strings.TrimSpace(doc.Name),
		GameSystem: strings.TrimSpace(doc.GameSystemName),
		Rules:      p.rules,
	}
	var factions []string
	seenFaction := map[string]bool{}

	var walk func(forces []forceXML) error
	walk = func(forces []forceXML) error {
		for _, f := range forces {
			if name := strings.TrimSpace(f.CatalogueName); name != "" && !seenFaction[name] {
				seenFaction[name] = true
				factions = append(factions, name)
			}
			// 分队规则只登记进规则表，不挂到具体单位上。
			if _, err := p.ruleRefs(f.Rules); err != nil {
				return err
			}
			for _, sel := range f.Selections {
				switch strings.ToLower(sel.Type) {
				case "unit", "model":
					u, err := p.unit(sel)
					if err != nil {
						return err
					}
					out.Units = append(out.Units, u)
				default:
					// 顶层 upgrade 是战斗规模、分队费用等配置项
				}
			}
			if err := walk(f.Forces); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc.Forces.Forces); err != nil {
		return nil, err
	}
	if len(out.Units) == 0 {
		return nil, apperrors.Parse("roster 中没有任何单位", map[string]string{"roster": out.Name})
	}
	out.Faction = strings.Join(factions, ", ")

	pts, pl := costTotals(doc.Costs)
	if pts == 0 {
		for _, u := range out.Units {
			pts += u.Points
		}
	}
	if pl == 0 {
		for _, u := range out.Units {
			pl += u.PowerLevel
		}
	}
	out.Points, out.PowerLevel = pts, pl
	return out, nil
}

// unit 处理顶层的 unit 或 model 选择。
func (p *parser) unit(sel selectionXML) (roster.Unit, error) {
	name := strings.TrimSpace(sel.Name)
	if name == "" {
		return roster.Unit{}, apperrors.Parse("单位缺少名称", map[string]string{"selection": sel.ID})
	}
	u := roster.Unit{Name: name}
	u.Points, u.PowerLevel = selectionCosts(sel)
	for _, c := range sel.Categories {
		cname := strings.TrimSpace(c.Name)
		if cname == "" {
			continue
		}
		u.Keywords = append(u.Keywords, cname)
		if c.Primary == "true" && u.Role == "" {
			u.Role = cname
		}
	}

	refs := &refSet{}
	stats := p.statProfiles(sel)

	if strings.EqualFold(sel.Type, "model") {
		m, err := p.model(sel, stats, refs)
		if err != nil {
			return roster.Unit{}, err
		}
		u.Models = []roster.Model{m}
	} else {
		if err := p.unitBody(sel, &u, stats, refs); err != nil {
			return roster.Unit{}, err
		}
	}

	if len(u.Models) == 0 {
		// 没有 model 子选择的单位（例如单模型载具）用自身的属性 profile 合成一个模型。
		if len(stats) == 0 {
			return roster.Unit{}, apperrors.Parse("单位没有任何模型", map[string]string{"unit": name})
		}
		u.Models = []roster.Model{{
			Name:    name,
			Count:   number(sel.Number),
			Stats:   p.stats(stats[0]),
			Weapons: u.Wargear,
		}}
		u.Wargear = nil
	}

	if p.opts.Tracking {
		u.Tracking = &roster.Tracking{}
	}
	u.Rules = refs.ids
	return u, nil
}

// unitBody 处理 unit 选择自身的规则与子选择。
func (p *parser) unitBody(sel selectionXML, u *roster.Unit, stats []profileXML, refs *refSet) error {
	ids, err := p.ruleRefs(sel.Rules)
	if err != nil {
		return err
	}
	refs.add(ids...)
	ids, err = p.profileRules(sel.Profiles)
	if err != nil {
		return err
	}
	refs.add(ids...)

	// 直接挂在单位上的武器 profile（载具、单模型单位常见）按单位级装备处理
	count := number(sel.Number)
	for _, prof := range sel.Profiles {
		if isHidden(prof.Hidden) || !isWeaponType(p.schema.profileType(prof)) {
			continue
		}
		u.Wargear = append(u.Wargear, roster.Weapon{
			Name:  strings.TrimSpace(prof.Name),
			Count: count,
			Stats: p.stats(prof),
		})
	}

	for _, child := range sel.Selections {
		switch {
		case strings.EqualFold(child.Type, "model"):
			m, err := p.model(child, stats, refs)
			if err != nil {
				return err
			}
			u.Models = append(u.Models, m)
		case hasModels(child):
			// 包含模型的分组选择，继续向下展开
			if err := p.unitBody(child, u, stats, refs); err != nil {
				return err
			}
		default:
			gear, err := p.gear(child)
			if err != nil {
				return err
			}
			u.Wargear = append(u.Wargear, gear...)
		}
	}
	return nil
}

func (p *parser) model(sel selectionXML, unitStats []profileXML, refs *refSet) (roster.Model, error) {
	name := strings.TrimSpace(sel.Name)
	if name == "" {
		return roster.Model{}, apperrors.Parse("模型缺少名称", map[string]string{"selection": sel.ID})
	}
	m := roster.Model{Name: name, Count: number(sel.Number)}
	if prof, ok := p.statsFor(name, sel.Profiles, unitStats); ok {
		m.Stats = p.stats(prof)
	}

	ids, err := p.ruleRefs(sel.Rules)
	if err != nil {
		return roster.Model{}, err
	}
	refs.add(ids...)
	ids, err = p.profileRules(sel.Profiles)
	if err != nil {
		return roster.Model{}, err
	}
	refs.add(ids...)

	for _, prof := range sel.Profiles {
		if isHidden(prof.Hidden) || !isWeaponType(p.schema.profileType(prof)) {
			continue
		}
		m.Weapons = append(m.Weapons, roster.Weapon{Name: strings.TrimSpace(prof.Name), Count: m.Count, Stats: p.stats(prof)})
	}
	for _, child := range sel.Selections {
		gear, err := p.gear(child)
		if err != nil {
			return roster.Model{}, err
		}
		m.Weapons = append(m.Weapons, gear...)
	}
	return m, nil
}

// gear 把一个 upgrade 选择（及其子选择）转换为武器/装备。
// 带武器 profile 的选择按 profile 拆成多件武器；纯分组容器只产出子项。
func (p *parser) gear(sel selectionXML) ([]roster.Weapon, error) {
	count := number(sel.Number)
	rules, err := p.ruleRefs(sel.Rules)
	if err != nil {
		return nil, err
	}
	abilities, err := p.profileRules(sel.Profiles)
	if err != nil {
		return nil, err
	}
	rules = append(rules, abilities...)

	var out []roster.Weapon
	for _, prof := range sel.Profiles {
		if isHidden(prof.Hidden) || !isWeaponType(p.schema.profileType(prof)) {
			continue
		}
		out = append(out, roster.Weapon{
			Name:  strings.TrimSpace(prof.Name),
			Count: count,
			Stats: p.stats(prof),
			Rules: rules,
		})
	}
	name := strings.TrimSpace(sel.Name)
	if len(out) == 0 && name != "" && (len(sel.Selections) == 0 || len(rules) > 0) {
		out = append(out, roster.Weapon{Name: name, Count: count, Rules: rules})
	}
	for _, child := range sel.Selections {
		more, err := p.gear(child)
		if err != nil {
			return nil, err
		}
		out = append(out, more...)
	}
	return out, nil
}

// statProfiles 收集单位子树内所有属性类 profile（Unit/Model），按出现顺序。
func (p *parser) statProfiles(sel selectionXML) []profileXML {
	var out []profileXML
	var visit func(s selectionXML)
	visit = func(s selectionXML) {
		for _, prof := range s.Profiles {
			if !isHidden(prof.Hidden) && isStatType(p.schema.profileType(prof)) {
				out = append(out, prof)
			}
		}
		for _, child := range s.Selections {
			visit(child)
		}
	}
	visit(sel)
	return out
}

// statsFor 选取模型的属性行：自身 profile 优先，其次按名称匹配单位内的 profile，最后取第一条。
func (p *parser) statsFor(name string, own, unitStats []profileXML) (profileXML, bool) {
	for _, prof := range own {
		if !isHidden(prof.Hidden) && isStatType(p.schema.profileType(prof)) {
			return prof, true
		}
	}
	for _, prof := range unitStats {
		if strings.TrimSpace(prof.Name) == name {
			return prof, true
		}
	}
	for _, prof := range unitStats {
		if strings.EqualFold(strings.TrimSpace(prof.Name), name) {
			return prof, true
		}
	}
	if len(unitStats) > 0 {
		return unitStats[0], true
	}
	return profileXML{}, false
}

func (p *parser) stats(prof profileXML) []roster.Stat {
	out := make([]roster.Stat, 0, len(prof.Characteristics))
	for _, c := range prof.Characteristics {
		out = append(out, roster.Stat{Name: strings.TrimSpace(c.Name), Value: p.schema.value(c)})
	}
	return out
}

// ruleRefs 登记 <rule> 节点并返回其 ID。
func (p *parser) ruleRefs(rules []ruleXML) ([]string, error) {
	var ids []string
	for _, r := range rules {
		if isHidden(r.Hidden) {
			continue
		}
		rule := roster.Rule{
			ID:    ruleID(r.ID, "rule", r.Name),
			Title: strings.TrimSpace(r.Name),
			Text:  strings.TrimSpace(r.Description),
		}
		if err := p.addRule(rule); err != nil {
			return nil, err
		}
		ids = append(ids, rule.ID)
	}
	return ids, nil
}

// profileRules 把 Abilities 以及其他非属性、非武器类型的 profile 登记为规则。
func (p *parser) profileRules(profiles []profileXML) ([]string, error) {
	var ids []string
	for _, prof := range profiles {
		if isHidden(prof.Hidden) {
			continue
		}
		kind := p.schema.profileType(prof)
		if isStatType(kind) || isWeaponType(kind) {
			continue
		}
		rule := roster.Rule{
			ID:    ruleID(prof.ID, "profile", prof.Name),
			Title: strings.TrimSpace(prof.Name),
			Text:  p.profileText(prof),
		}
		if err := p.addRule(rule); err != nil {
			return nil, err
		}
		ids = append(ids, rule.ID)
	}
	return ids, nil
}

func (p *parser) profileText(prof profileXML) string {
	if len(prof.Characteristics) == 1 {
		return p.schema.value(prof.Characteristics[0])
	}
	for _, c := range prof.Characteristics {
		if strings.EqualFold(strings.TrimSpace(c.Name), "description") {
			return p.schema.value(c)
		}
	}
	parts := make([]string, 0, len(prof.Characteristics))
	for _, c := range prof.Characteristics {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.TrimSpace(c.Name), p.schema.value(c)))
	}
	return strings.Join(parts, "; ")
}

func (p *parser) addRule(r roster.Rule) error {
	if err := p.rules.Add(r); err != nil {
		var conflict *roster.ConflictError
		if errors.As(err, &conflict) {
			return apperrors.Parse("同一规则 ID 对应了不同的正文", map[string]string{"rule": conflict.ID, "title": r.Title})
		}
		return apperrors.Wrap(apperrors.KindParse, "登记规则失败", err)
	}
	return nil
}

func ruleID(id, prefix, name string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return prefix + ":" + strings.TrimSpace(name)
}

func hasModels(sel selectionXML) bool {
	for _, child := range sel.Selections {
		if strings.EqualFold(child.Type, "model") || hasModels(child) {
			return true
		}
	}
	return false
}

func isStatType(kind string) bool {
	switch strings.ToLower(kind) {
	case "unit", "model":
		return true
	}
	return false
}

func isWeaponType(kind string) bool {
	return strings.Contains(strings.ToLower(kind), "weapon")
}

func isHidden(v string) bool { return v == "true" }

func number(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// selectionCosts 自底向上累计选择及其全部子选择的点数与战力。
func selectionCosts(sel selectionXML) (int, int) {
	pts, pl := costTotals(sel.Costs)
	for _, child := range sel.Selections {
		cp, cl := selectionCosts(child)
		pts += cp
		pl += cl
	}
	return pts, pl
}

func costTotals(costs []costXML) (int, int) {
	var pts, pl float64
	for _, c := range costs {
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(c.Name)) {
		case "pts", "points":
			pts += v
		case "pl", "power", "power level":
			pl += v
		}
	}
	return int(math.Round(pts)), int(math.Round(pl))
}

// refSet 是保序去重的规则 ID 集合。
type refSet struct {
	ids  []string
	seen map[string]bool
}

func (s *refSet) add(ids ...string) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	for _, id := range ids {
		if s.seen[id] {
			continue
		}
		s.seen[id] = true
		s.ids = append(s.ids, id)
	}
}
