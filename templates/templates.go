// Package templates 内置默认的卡片模板。
package templates

import _ "embed"

// Default 是内置的 default.cards 模板源码。
//
//go:embed default.cards
var Default string
