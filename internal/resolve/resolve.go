// Package resolve maps user-typed table and row names onto the exact names held
// by the store. It is a convenience for callers; segmentation never uses it.
//
// Matching runs in three passes and the first hit wins: exact, case-insensitive,
// then substring in either direction. When several names match in the same pass
// the earliest in the given order is returned.
package resolve

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"github.com/joseph-ayodele/xltables/internal/common"
)

// MaxRowSuggestions caps the row names reported on a failed row lookup.
const MaxRowSuggestions = 10

// CleanQuery percent-decodes and trims a user supplied name.
func CleanQuery(q string) string {
	if decoded, err := url.PathUnescape(q); err == nil {
		return strings.TrimSpace(decoded)
	}
	return strings.TrimSpace(q)
}

// Table resolves query against the table names.
func Table(names []string, query string) (string, error) {
	q := CleanQuery(query)
	if q == "" {
		return "", common.NewAppError("INVALID_ARGUMENT", "table name is required", common.ErrInvalidInput)
	}
	i := match(names, q)
	if i < 0 {
		return "", common.NewNotFoundError("table", q, append([]string(nil), names...))
	}
	return names[i], nil
}

// Row resolves query against the first cell of every row and returns the row index.
func Row(rows [][]string, query string) (int, error) {
	q := CleanQuery(query)
	if q == "" {
		return -1, common.NewAppError("INVALID_ARGUMENT", "row name is required", common.ErrInvalidInput)
	}
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = RowLabel(r)
	}
	if i := match(labels, q); i >= 0 {
		return i, nil
	}

	var available []string
	for _, l := range labels {
		if l != "" {
			available = append(available, l)
		}
		if len(available) == MaxRowSuggestions {
			break
		}
	}
	return -1, common.NewNotFoundError("row", q, available)
}

// RowLabel is the trimmed first cell of a row, or "" for an empty row.
func RowLabel(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(row[0])
}

// match returns the index of the best candidate for q, or -1.
// Blank candidates never match.
func match(candidates []string, q string) int {
	for i, c := range candidates {
		if c != "" && c == q {
			return i
		}
	}

	fold := cases.Fold()
	fq := fold.String(q)
	folded := make([]string, len(candidates))
	for i, c := range candidates {
		folded[i] = fold.String(c)
	}

	for i, c := range folded {
		if c != "" && c == fq {
			return i
		}
	}
	for i, c := range folded {
		if c != "" && (strings.Contains(c, fq) || strings.Contains(fq, c)) {
			return i
		}
	}
	return -1
}
