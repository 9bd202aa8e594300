package segment

import "github.com/joseph-ayodele/xltables/internal/grid"

// Result is the outcome of one segmentation run.
type Result struct {
	// Occurrences are all title cells found, sorted by (row, col).
	Occurrences []TitleOccurrence
	// Tables are the kept tables in anchor order.
	Tables []Table
}

// Segment locates titles in g and returns the cleaned tables they anchor.
func Segment(g grid.Grid, cfg Config) Result {
	occ := LocateTitles(g, cfg.Titles)
	return Result{
		Occurrences: occ,
		Tables:      Extract(g, occ, cfg),
	}
}

// Names returns the table names in anchor order.
func (r Result) Names() []string {
	names := make([]string, 0, len(r.Tables))
	for _, t := range r.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Discarded is the number of title occurrences that did not yield a table.
func (r Result) Discarded() int {
	return len(r.Occurrences) - len(r.Tables)
}
