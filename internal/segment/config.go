// Package segment splits a spreadsheet grid into the named tables it contains.
//
// A table is found by its title cell (an exact match against a catalog of known
// titles). Each title owns the rows down to the next title row and, when several
// titles share a row, the columns up to its right-hand neighbour. The carved
// rectangle is then cleaned of sparse rows, sparse columns and blank margins.
package segment

// Config tunes segmentation. The zero value is not useful; start from DefaultConfig.
type Config struct {
	// Titles is the ordered catalog of exact title strings to anchor on.
	Titles []string

	// MaxEmptyRowRatio drops rows whose blank fraction is above it.
	MaxEmptyRowRatio float64
	// MaxEmptyColRatio drops columns whose blank fraction is above it.
	MaxEmptyColRatio float64
	// MaxBlankStreak is how many fully blank rows/columns may stay at each edge.
	MaxBlankStreak int

	// MinRows and MinCols are the smallest cleaned block that is kept.
	MinRows int
	MinCols int
}

// DefaultTitles is the catalog used when none is configured.
var DefaultTitles = []string{
	"INITIAL INVESTMENT",
	"CASHFLOW DETAILS",
	"DISCOUNT RATE",
	"WORKING CAPITAL",
	"GROWTH RATES",
	"SALVAGE VALUE",
	"OPERATING CASHFLOWS",
	"BOOK VALUE & DEPRECIATION",
	"Investment Measures",
}

// DefaultConfig returns the standard thresholds with the default title catalog.
func DefaultConfig() Config {
	return Config{
		Titles:           append([]string(nil), DefaultTitles...),
		MaxEmptyRowRatio: 0.6,
		MaxEmptyColRatio: 0.6,
		MaxBlankStreak:   1,
		MinRows:          2,
		MinCols:          2,
	}
}

// CleanOptions returns the cleaner settings carried by c.
func (c Config) CleanOptions() CleanOptions {
	return CleanOptions{
		MaxEmptyRowRatio: c.MaxEmptyRowRatio,
		MaxEmptyColRatio: c.MaxEmptyColRatio,
		MaxBlankStreak:   c.MaxBlankStreak,
	}
}
