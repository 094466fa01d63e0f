// Package roster 定义军表解析后的规范模型：军表、单位、模型、武器与规则。
// 解析完成后实体不再修改，去重只生成新的视图。
package roster

// Roster 是一份完整军表，按原顺序持有全部单位。
type Roster struct {
	Name       string    `json:"name"`
	GameSystem string    `json:"gameSystem,omitempty"`
	Faction    string    `json:"faction,omitempty"`
	Points     int       `json:"points"`
	PowerLevel int       `json:"powerLevel,omitempty"`
	Units      []Unit    `json:"units"`
	Rules      *RuleBook `json:"-"`
}

// Unit 是带点数与装备的一组模型。Rules 只保存规则 ID，正文在 Roster.Rules 中。
type Unit struct {
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Points     int       `json:"points"`
	PowerLevel int       `json:"powerLevel,omitempty"`
	Models     []Model   `json:"models"`
	Wargear    []Weapon  `json:"wargear,omitempty"` // 不属于某个具体模型的单位级选择
	Rules      []string  `json:"rules,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	Tracking   *Tracking `json:"tracking,omitempty"`
}

// ModelCount returns the number of figures in the unit.
func (u Unit) ModelCount() int {
	n := 0
	for _, m := range u.Models {
		n += m.Count
	}
	return n
}

// Model 是单位内的一种模型及其数量。
type Model struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Stats   []Stat   `json:"stats,omitempty"`
	Weapons []Weapon `json:"weapons,omitempty"`
}

// Weapon 同时表示武器与无属性的装备项。
type Weapon struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Stats []Stat   `json:"stats,omitempty"`
	Rules []string `json:"rules,omitempty"`
}

// Stat 是一项按声明顺序保存的属性，值对核心逻辑不透明。
type Stat struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StatValue looks up a stat by name.
func StatValue(stats []Stat, name string) (string, bool) {
	for _, s := range stats {
		if s.Name == name {
			return s.Value, true
		}
	}
	return "", false
}

// Rule 以 ID 为键共享，多个单位或武器引用时不复制正文。
type Rule struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Tracking holds narrative campaign counters printed as fill-in boxes.
type Tracking struct {
	BattlesPlayed   int      `json:"battlesPlayed"`
	BattlesSurvived int      `json:"battlesSurvived"`
	Experience      int      `json:"experience"`
	CrusadePoints   int      `json:"crusadePoints"`
	Rank            string   `json:"rank,omitempty"`
	BattleHonours   []string `json:"battleHonours,omitempty"`
	BattleScars     []string `json:"battleScars,omitempty"`
}
