package segment

import (
	"fmt"

	"github.com/joseph-ayodele/xltables/internal/grid"
)

// Table is one cleaned, named block carved out of the source grid.
type Table struct {
	// Name is unique within one segmentation run.
	Name string
	// Title is the catalog entry the table was anchored on.
	Title string
	// Anchor is the title cell position.
	Anchor TitleOccurrence
	// Source is the pre-clean rectangle claimed in the source grid.
	Source grid.Rect
	// Cells is the cleaned content.
	Cells grid.Grid
}

// Extract carves a table for every occurrence, in order.
//
// Repeated titles are named "T", "T (1)", "T (2)"... in anchor order. Blocks that
// clean down to less than MinRows x MinCols are dropped and leave their cells
// free. Kept blocks claim their whole pre-clean rectangle so that no two tables
// ever share a source cell.
func Extract(g grid.Grid, occ []TitleOccurrence, cfg Config) []Table {
	rowEnds := RowBoundaries(occ, g.Rows())
	rowToCols := GroupByRow(occ)
	used := grid.NewMask(g.Rows(), g.Cols())
	repeats := make(map[string]int)
	opts := cfg.CleanOptions()

	var out []Table
	for _, o := range occ {
		if used.Used(o.Row, o.Col) {
			continue
		}

		name := o.Title
		if n, seen := repeats[o.Title]; seen {
			n++
			repeats[o.Title] = n
			name = fmt.Sprintf("%s (%d)", o.Title, n)
		} else {
			repeats[o.Title] = 0
		}

		left, right := ColumnSpan(o.Row, o.Col, rowToCols, g.Cols())
		rect := grid.Rect{Top: o.Row, Bottom: rowEnds[o.Row], Left: left, Right: right}

		cleaned := Clean(g.Sub(rect.Top, rect.Bottom, rect.Left, rect.Right), opts)
		if cleaned.Rows() < cfg.MinRows || cleaned.Cols() < cfg.MinCols {
			continue
		}

		used.Claim(rect)
		out = append(out, Table{
			Name:   name,
			Title:  o.Title,
			Anchor: o,
			Source: rect,
			Cells:  cleaned,
		})
	}
	return out
}
