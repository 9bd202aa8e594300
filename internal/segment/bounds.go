package segment

import "slices"

// RowBoundaries maps each distinct anchor row to its exclusive end row: the next
// anchor row, or totalRows for the last one. Anchors sharing a row share the span.
func RowBoundaries(occ []TitleOccurrence, totalRows int) map[int]int {
	rows := make([]int, 0, len(occ))
	for _, o := range occ {
		rows = append(rows, o.Row)
	}
	slices.Sort(rows)
	rows = slices.Compact(rows)

	bounds := make(map[int]int, len(rows))
	for i, r := range rows {
		next := totalRows
		if i+1 < len(rows) {
			next = rows[i+1]
		}
		bounds[r] = next
	}
	return bounds
}

// GroupByRow collects the anchor columns of every anchor row.
func GroupByRow(occ []TitleOccurrence) map[int][]int {
	byRow := make(map[int][]int)
	for _, o := range occ {
		byRow[o.Row] = append(byRow[o.Row], o.Col)
	}
	return byRow
}

// ColumnSpan returns the [left, right) columns owned by the anchor at (row, col).
// A lone anchor owns the whole row. Siblings split the row into [col_i, col_{i+1}),
// the last one running to totalCols.
func ColumnSpan(row, col int, rowToCols map[int][]int, totalCols int) (left, right int) {
	left, right = 0, totalCols

	cols := slices.Clone(rowToCols[row])
	if len(cols) <= 1 {
		return left, right
	}
	slices.Sort(cols)

	for i, start := range cols {
		end := totalCols
		if i+1 < len(cols) {
			end = cols[i+1]
		}
		if start <= col && col < end {
			return start, end
		}
	}
	return left, right
}
