// Package grid holds the rectangular cell model every segmentation stage works on.
package grid

import "strings"

// Grid is a row-major rectangular block of cell strings. Blank cells are "".
// A Grid is never mutated after construction; every transformation returns a new one.
type Grid struct {
	cells [][]string
	cols  int
}

// New builds a Grid from possibly ragged rows, padding short rows with "".
// The input slices are copied.
func New(rows [][]string) Grid {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, cols)
		copy(row, r)
		cells[i] = row
	}
	return Grid{cells: cells, cols: cols}
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g.cells) }

// Cols returns the number of columns.
func (g Grid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return g.cols
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool { return g.Rows() == 0 || g.Cols() == 0 }

// At returns the cell at (r, c), or "" when out of range.
func (g Grid) At(r, c int) string {
	if r < 0 || r >= len(g.cells) || c < 0 || c >= g.cols {
		return ""
	}
	return g.cells[r][c]
}

// Row returns a copy of row r.
func (g Grid) Row(r int) []string {
	out := make([]string, g.cols)
	copy(out, g.cells[r])
	return out
}

// Sub returns the rectangle [top,bottom) x [left,right), clamped to the grid.
func (g Grid) Sub(top, bottom, left, right int) Grid {
	top, bottom = clamp(top, 0, g.Rows()), clamp(bottom, 0, g.Rows())
	left, right = clamp(left, 0, g.Cols()), clamp(right, 0, g.Cols())
	if bottom < top {
		bottom = top
	}
	if right < left {
		right = left
	}
	cells := make([][]string, 0, bottom-top)
	for r := top; r < bottom; r++ {
		row := make([]string, right-left)
		copy(row, g.cells[r][left:right])
		cells = append(cells, row)
	}
	return Grid{cells: cells, cols: right - left}
}

// Select returns a grid made of the given row and column indices, in order.
func (g Grid) Select(rows, cols []int) Grid {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = g.cells[r][c]
		}
		cells = append(cells, row)
	}
	return Grid{cells: cells, cols: len(cols)}
}

// Records returns a deep copy of the cells as [][]string.
func (g Grid) Records() [][]string {
	out := make([][]string, len(g.cells))
	for i, r := range g.cells {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Equal reports whether both grids have the same shape and cells.
func (g Grid) Equal(o Grid) bool {
	if g.Rows() != o.Rows() || g.Cols() != o.Cols() {
		return false
	}
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c] != o.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// IsBlank reports whether a cell counts as missing. Whitespace-only cells are blank.
func IsBlank(s string) bool { return strings.TrimSpace(s) == "" }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
