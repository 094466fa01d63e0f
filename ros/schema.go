package ros

import (
	"strconv"
	"strings"

	apperrors "github.com/ByLCY/datacards/errors"
)

// Schema 标识 roster 文档的 schema 代际，由文档结构决定而不是文件扩展名。
type Schema int

const (
	SchemaUnknown Schema = iota
	// SchemaLegacy: profile 以 profileTypeName 声明类型，属性值在 value 属性中。
	SchemaLegacy
	// SchemaCurrent: profile 以 typeName 声明类型，属性值为元素文本。
	SchemaCurrent
)

func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "legacy"
	case SchemaCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// legacyMaxVersion 是仍使用旧版 profile 结构的最高 battleScribeVersion。
const legacyMaxVersion = 2.01

func (s Schema) profileType(p profileXML) string {
	if s == SchemaLegacy {
		return strings.TrimSpace(p.ProfileTypeName)
	}
	return strings.TrimSpace(p.TypeName)
}

func (s Schema) value(c characteristicXML) string {
	if s == SchemaLegacy && c.Value != nil {
		return strings.TrimSpace(*c.Value)
	}
	if text := strings.TrimSpace(c.Text); text != "" || c.Value == nil {
		return text
	}
	return strings.TrimSpace(*c.Value)
}

// detectSchema 先看 profile 结构上的标记；文档中没有任何 profile 时退回到
// battleScribeVersion 属性。两种标记混用视为 schema 不一致。
func detectSchema(doc *rosterXML) (Schema, error) {
	if doc.XMLName.Local != "roster" {
		return SchemaUnknown, apperrors.WithMetadata(apperrors.KindUnsupportedSchema,
			"根元素不是 roster", map[string]string{"root": doc.XMLName.Local})
	}
	if doc.Forces == nil {
		return SchemaUnknown, apperrors.New(apperrors.KindUnsupportedSchema, "roster 缺少 forces 节点")
	}

	var legacy, current bool
	var visit func(sels []selectionXML)
	visit = func(sels []selectionXML) {
		for _, sel := range sels {
			for _, p := range sel.Profiles {
				if p.ProfileTypeName != "" {
					legacy = true
				}
				if p.TypeName != "" {
					current = true
				}
				for _, c := range p.Characteristics {
					if c.Value != nil {
						legacy = true
					}
				}
			}
			visit(sel.Selections)
		}
	}
	var visitForces func(forces []forceXML)
	visitForces = func(forces []forceXML) {
		for _, f := range forces {
			visit(f.Selections)
			visitForces(f.Forces)
		}
	}
	visitForces(doc.Forces.Forces)

	switch {
	case legacy && current:
		return SchemaUnknown, apperrors.Parse("profile 同时使用了新旧两种 schema 结构", nil)
	case legacy:
		return SchemaLegacy, nil
	case current:
		return SchemaCurrent, nil
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(doc.BattleScribeVersion), 64); err == nil && v <= legacyMaxVersion {
		return SchemaLegacy, nil
	}
	return SchemaCurrent, nil
}
