package grid

// Rect is the half-open rectangle [Top,Bottom) x [Left,Right) in grid coordinates.
type Rect struct {
	Top, Bottom int
	Left, Right int
}

// Overlaps reports whether two rectangles share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.Top < o.Bottom && o.Top < r.Bottom && r.Left < o.Right && o.Left < r.Right
}

// Mask tracks which cells of a rows x cols grid have been claimed.
type Mask struct {
	used [][]bool
}

// NewMask returns an all-false mask.
func NewMask(rows, cols int) *Mask {
	used := make([][]bool, rows)
	for i := range used {
		used[i] = make([]bool, cols)
	}
	return &Mask{used: used}
}

// Used reports whether (r, c) is claimed. Out-of-range cells are never used.
func (m *Mask) Used(r, c int) bool {
	if r < 0 || r >= len(m.used) || c < 0 || c >= len(m.used[r]) {
		return false
	}
	return m.used[r][c]
}

// Claim marks every in-range cell of rect as used.
func (m *Mask) Claim(rect Rect) {
	for r := rect.Top; r < rect.Bottom && r < len(m.used); r++ {
		if r < 0 {
			continue
		}
		for c := rect.Left; c < rect.Right && c < len(m.used[r]); c++ {
			if c < 0 {
				continue
			}
			m.used[r][c] = true
		}
	}
}
