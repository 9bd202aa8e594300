// Package tables computes read-only summaries over stored tables.
package tables

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/joseph-ayodele/xltables/internal/resolve"
	"github.com/joseph-ayodele/xltables/internal/store"
)

// DebugPreviewRows is how many leading rows Debug returns.
const DebugPreviewRows = 5

// Numbers returns the finite numeric values of a row, skipping its first cell.
// Cells that do not parse as numbers are ignored.
func Numbers(row []string) []float64 {
	if len(row) <= 1 {
		return nil
	}
	out := make([]float64, 0, len(row)-1)
	for _, cell := range row[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RowSum adds up the numeric cells of a row after its label.
func RowSum(row []string) float64 {
	return floats.Sum(Numbers(row))
}

// Round4 rounds to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Stats summarises the numeric cells of a row.
type Stats struct {
	Count int
	Sum   float64
	Mean  float64
	Min   float64
	Max   float64
}

// RowStats computes Stats over the numeric cells after the row label.
// All fields are zero when the row has no numeric cells.
func RowStats(row []string) Stats {
	vals := Numbers(row)
	if len(vals) == 0 {
		return Stats{}
	}
	return Stats{
		Count: len(vals),
		Sum:   floats.Sum(vals),
		Mean:  stat.Mean(vals, nil),
		Min:   floats.Min(vals),
		Max:   floats.Max(vals),
	}
}

// RowNames labels every row by its first cell. Empty rows become
// "<empty_row_i>" and rows with a blank first cell "<empty_cell_i>".
func RowNames(t store.NamedTable) []string {
	names := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		switch {
		case len(r) == 0:
			names[i] = fmt.Sprintf("<empty_row_%d>", i)
		case resolve.RowLabel(r) == "":
			names[i] = fmt.Sprintf("<empty_cell_%d>", i)
		default:
			names[i] = resolve.RowLabel(r)
		}
	}
	return names
}

// DebugView is a raw look at a stored table.
type DebugView struct {
	RequestedName string
	TableName     string
	NumRows       int
	NumCols       int
	FirstRows     [][]string
	FirstCells    []string
}

// Debug builds a DebugView of t for the name the caller asked for.
func Debug(requested string, t store.NamedTable) DebugView {
	n := min(len(t.Rows), DebugPreviewRows)
	first := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		if len(r) == 0 {
			first[i] = "EMPTY_ROW"
			continue
		}
		first[i] = r[0]
	}
	return DebugView{
		RequestedName: requested,
		TableName:     t.Name,
		NumRows:       len(t.Rows),
		NumCols:       t.NumCols(),
		FirstRows:     t.Rows[:n],
		FirstCells:    first,
	}
}
