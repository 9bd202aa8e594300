package segment

import (
	"reflect"
	"testing"

	"github.com/joseph-ayodele/xltables/internal/grid"
)

var defaultClean = DefaultConfig().CleanOptions()

func TestClean_DropsSparseRows(t *testing.T) {
	block := grid.New([][]string{
		{"Title", "", "", ""},
		{"a", "1", "2", "3"},
		{"b", "4", "", "6"},
		{"c", "", "", ""},
	})
	got := Clean(block, defaultClean)
	want := [][]string{
		{"a", "1", "2", "3"},
		{"b", "4", "", "6"},
	}
	if !reflect.DeepEqual(got.Records(), want) {
		t.Errorf("Clean = %v, want %v", got.Records(), want)
	}
}

func TestClean_ColumnsJudgedAfterRowFilter(t *testing.T) {
	block := grid.New([][]string{
		{"a", "1", "", ""},
		{"b", "2", "", "x"},
		{"c", "3", "", ""},
	})
	got := Clean(block, defaultClean)
	want := [][]string{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	if !reflect.DeepEqual(got.Records(), want) {
		t.Errorf("Clean = %v, want %v", got.Records(), want)
	}
}

func TestClean_WhitespaceCountsAsBlank(t *testing.T) {
	block := grid.New([][]string{
		{" ", "\t", "  "},
		{"a", "1", "2"},
		{"b", "3", "4"},
	})
	got := Clean(block, defaultClean)
	if got.Rows() != 2 {
		t.Errorf("rows = %d, want 2", got.Rows())
	}
}

func TestClean_EdgeTrimTolerance(t *testing.T) {
	block := grid.New([][]string{
		{"", ""},
		{"", ""},
		{"", ""},
		{"a", "1"},
		{"", ""},
		{"b", "2"},
		{"", ""},
	})
	keepAll := CleanOptions{MaxEmptyRowRatio: 1, MaxEmptyColRatio: 1}

	tests := []struct {
		name      string
		tolerance int
		want      [][]string
	}{
		{"tolerance one keeps a single trailing blank", 1, [][]string{{"a", "1"}, {"", ""}, {"b", "2"}, {"", ""}}},
		{"tolerance zero trims every edge blank", 0, [][]string{{"a", "1"}, {"", ""}, {"b", "2"}}},
		{"large tolerance keeps everything", 5, block.Records()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := keepAll
			opts.MaxBlankStreak = tt.tolerance
			got := Clean(block, opts)
			if !reflect.DeepEqual(got.Records(), tt.want) {
				t.Errorf("Clean = %v, want %v", got.Records(), tt.want)
			}
		})
	}
}

func TestClean_EdgeTrimColumns(t *testing.T) {
	block := grid.New([][]string{
		{"", "", "a", "1", ""},
		{"", "", "b", "2", ""},
	})
	opts := CleanOptions{MaxEmptyRowRatio: 1, MaxEmptyColRatio: 1, MaxBlankStreak: 1}
	got := Clean(block, opts)
	want := [][]string{{"a", "1", ""}, {"b", "2", ""}}
	if !reflect.DeepEqual(got.Records(), want) {
		t.Errorf("Clean = %v, want %v", got.Records(), want)
	}
}

func TestClean_AllBlank(t *testing.T) {
	got := Clean(grid.New([][]string{{"", ""}, {"", ""}}), defaultClean)
	if !got.Empty() {
		t.Errorf("all-blank block cleaned to %v", got.Records())
	}
	if got := Clean(grid.New(nil), defaultClean); !got.Empty() {
		t.Errorf("empty block cleaned to %v", got.Records())
	}
}

func TestClean_Idempotent(t *testing.T) {
	raw := grid.New([][]string{
		{"CASHFLOW DETAILS", "", "", ""},
		{"Year", "1", "2", "3"},
		{"Revenue", "100", "", "120"},
		{"", "", "", ""},
		{"Cost", "50", "55", "60"},
	})
	once := Clean(raw, defaultClean)
	twice := Clean(once, defaultClean)
	if !once.Equal(twice) {
		t.Errorf("second pass changed the block:\n%v\n%v", once.Records(), twice.Records())
	}
	if once.Rows() != 3 || once.Cols() != 4 {
		t.Errorf("shape = %dx%d, want 3x4", once.Rows(), once.Cols())
	}
}

func TestTrimEdges(t *testing.T) {
	tests := []struct {
		blank      []bool
		tolerance  int
		start, end int
	}{
		{nil, 1, 0, 0},
		{[]bool{false, false}, 1, 0, 2},
		{[]bool{true, false, true}, 1, 0, 3},
		{[]bool{true, true, false, true, true}, 1, 2, 3},
		{[]bool{true, true, true}, 1, 3, 3},
		{[]bool{true}, 0, 1, 1},
	}
	for _, tt := range tests {
		start, end := trimEdges(tt.blank, tt.tolerance)
		if start != tt.start || end != tt.end {
			t.Errorf("trimEdges(%v, %d) = [%d,%d), want [%d,%d)", tt.blank, tt.tolerance, start, end, tt.start, tt.end)
		}
	}
}
