package segment

import "github.com/joseph-ayodele/xltables/internal/grid"

// CleanOptions controls Clean.
type CleanOptions struct {
	MaxEmptyRowRatio float64
	MaxEmptyColRatio float64
	MaxBlankStreak   int
}

// Clean drops sparse rows, then sparse columns of what is left, then trims blank
// runs longer than MaxBlankStreak from both edges of the row axis and the column
// axis. The returned grid is freshly indexed from 0; block is not modified.
func Clean(block grid.Grid, opts CleanOptions) grid.Grid {
	rows := sparseRows(block, opts.MaxEmptyRowRatio)
	cols := sparseCols(block, rows, opts.MaxEmptyColRatio)
	filtered := block.Select(rows, cols)

	rowBlank := make([]bool, filtered.Rows())
	for r := range rowBlank {
		rowBlank[r] = blankRow(filtered, r)
	}
	rStart, rEnd := trimEdges(rowBlank, opts.MaxBlankStreak)
	trimmed := filtered.Sub(rStart, rEnd, 0, filtered.Cols())

	colBlank := make([]bool, trimmed.Cols())
	for c := range colBlank {
		colBlank[c] = blankCol(trimmed, c)
	}
	cStart, cEnd := trimEdges(colBlank, opts.MaxBlankStreak)
	return trimmed.Sub(0, trimmed.Rows(), cStart, cEnd)
}

// sparseRows returns the rows whose blank fraction is at most maxRatio.
// With no columns the fraction is undefined and every row is dropped.
func sparseRows(g grid.Grid, maxRatio float64) []int {
	keep := make([]int, 0, g.Rows())
	if g.Cols() == 0 {
		return keep
	}
	for r := 0; r < g.Rows(); r++ {
		blanks := 0
		for c := 0; c < g.Cols(); c++ {
			if grid.IsBlank(g.At(r, c)) {
				blanks++
			}
		}
		if float64(blanks)/float64(g.Cols()) <= maxRatio {
			keep = append(keep, r)
		}
	}
	return keep
}

// sparseCols evaluates columns over the kept rows only.
func sparseCols(g grid.Grid, rows []int, maxRatio float64) []int {
	keep := make([]int, 0, g.Cols())
	if len(rows) == 0 {
		return keep
	}
	for c := 0; c < g.Cols(); c++ {
		blanks := 0
		for _, r := range rows {
			if grid.IsBlank(g.At(r, c)) {
				blanks++
			}
		}
		if float64(blanks)/float64(len(rows)) <= maxRatio {
			keep = append(keep, c)
		}
	}
	return keep
}

// trimEdges returns the [start, end) window left after cutting leading and
// trailing blank runs. Up to tolerance blanks survive at an edge; once a run
// exceeds it, everything up to the last blank of the run is cut.
func trimEdges(blank []bool, tolerance int) (start, end int) {
	n := len(blank)
	start, end = 0, n

	run := 0
	for i := 0; i < n && blank[i]; i++ {
		run++
		if run > tolerance {
			start = i + 1
		}
	}

	run = 0
	for i := n - 1; i >= 0 && blank[i]; i-- {
		run++
		if run > tolerance {
			end = i
		}
	}

	if end < start {
		end = start
	}
	return start, end
}

func blankRow(g grid.Grid, r int) bool {
	for c := 0; c < g.Cols(); c++ {
		if !grid.IsBlank(g.At(r, c)) {
			return false
		}
	}
	return true
}

func blankCol(g grid.Grid, c int) bool {
	for r := 0; r < g.Rows(); r++ {
		if !grid.IsBlank(g.At(r, c)) {
			return false
		}
	}
	return true
}
