package layout

// Density 选择卡片模板中的变体。
type Density int

const (
	// Compact 横向页面，每页两张卡，较小字号。
	Compact Density = iota
	// Big 纵向页面，每页一张卡，较大字号。
	Big
)

// String returns the variant name used in card templates.
func (d Density) String() string {
	if d == Big {
		return "big"
	}
	return "compact"
}

// Options 控制卡片的排版内容。
type Options struct {
	BigCards       bool
	Tracking       bool
	ReferenceRules bool
}

// Density returns the variant selected by the options.
func (o Options) Density() Density {
	if o.BigCards {
		return Big
	}
	return Compact
}
