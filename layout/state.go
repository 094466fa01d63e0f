package layout

// State 是排版游标，按值传递，每次移动都返回新值。
type State struct {
	X, Y float64
	// Top 是页面内容区顶部，Reset 后 Y 回到这里。
	Top  float64
	MaxX float64
	MaxY float64
}

// Fits reports whether a block of height h fits below the cursor.
func (s State) Fits(h float64) bool { return s.Y+h <= s.MaxY }

// Advance moves the cursor down by h.
func (s State) Advance(h float64) State {
	s.Y += h
	return s
}

// Reset moves the cursor back to the top of the content area.
func (s State) Reset() State {
	s.Y = s.Top
	return s
}

// AtTop reports whether nothing has been placed on the page yet.
func (s State) AtTop() bool { return s.Y <= s.Top }

// Width returns the usable content width.
func (s State) Width() float64 { return s.MaxX - s.X }
