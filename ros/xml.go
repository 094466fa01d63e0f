package ros

import "encoding/xml"

// 以下结构同时覆盖两代 schema 的字段：旧版 profile 使用 profileTypeName，
// characteristic 的值放在 value 属性中；新版使用 typeName 与元素文本。

type rosterXML struct {
	XMLName             xml.Name
	Name                string     `xml:"name,attr"`
	GameSystemName      string     `xml:"gameSystemName,attr"`
	BattleScribeVersion string     `xml:"battleScribeVersion,attr"`
	Costs               []costXML  `xml:"costs>cost"`
	Forces              *forcesXML `xml:"forces"`
}

type forcesXML struct {
	Forces []forceXML `xml:"force"`
}

type forceXML struct {
	ID            string         `xml:"id,attr"`
	Name          string         `xml:"name,attr"`
	CatalogueName string         `xml:"catalogueName,attr"`
	Rules         []ruleXML      `xml:"rules>rule"`
	Selections    []selectionXML `xml:"selections>selection"`
	Forces        []forceXML     `xml:"forces>force"`
}

type selectionXML struct {
	ID         string         `xml:"id,attr"`
	Name       string         `xml:"name,attr"`
	Number     string         `xml:"number,attr"`
	Type       string         `xml:"type,attr"`
	Rules      []ruleXML      `xml:"rules>rule"`
	Profiles   []profileXML   `xml:"profiles>profile"`
	Selections []selectionXML `xml:"selections>selection"`
	Costs      []costXML      `xml:"costs>cost"`
	Categories []categoryXML  `xml:"categories>category"`
}

type ruleXML struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Hidden      string `xml:"hidden,attr"`
	Description string `xml:"description"`
}

type profileXML struct {
	ID              string              `xml:"id,attr"`
	Name            string              `xml:"name,attr"`
	Hidden          string              `xml:"hidden,attr"`
	TypeName        string              `xml:"typeName,attr"`
	ProfileTypeName string              `xml:"profileTypeName,attr"`
	Characteristics []characteristicXML `xml:"characteristics>characteristic"`
}

type characteristicXML struct {
	Name  string  `xml:"name,attr"`
	Value *string `xml:"value,attr"`
	Text  string  `xml:",chardata"`
}

type costXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type categoryXML struct {
	Name    string `xml:"name,attr"`
	Primary string `xml:"primary,attr"`
}
