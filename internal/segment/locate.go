package segment

import (
	"cmp"
	"slices"
	"strings"

	"github.com/joseph-ayodele/xltables/internal/grid"
)

// TitleOccurrence is a cell whose trimmed value equals a catalog title.
type TitleOccurrence struct {
	Row   int
	Col   int
	Title string
}

// LocateTitles returns every title cell in g, sorted by (row, col).
// Matching is exact and case sensitive after trimming surrounding whitespace.
// Repeated titles are all reported.
func LocateTitles(g grid.Grid, titles []string) []TitleOccurrence {
	if g.Empty() || len(titles) == 0 {
		return nil
	}
	catalog := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		catalog[t] = struct{}{}
	}

	var out []TitleOccurrence
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			cell := strings.TrimSpace(g.At(r, c))
			if _, ok := catalog[cell]; ok {
				out = append(out, TitleOccurrence{Row: r, Col: c, Title: cell})
			}
		}
	}

	slices.SortStableFunc(out, func(a, b TitleOccurrence) int {
		if n := cmp.Compare(a.Row, b.Row); n != 0 {
			return n
		}
		return cmp.Compare(a.Col, b.Col)
	})
	return out
}
