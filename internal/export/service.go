package export

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/xltables/internal/store"
)

// IndexSheet lists every exported table and the sheet holding it.
const IndexSheet = "Tables"

const maxSheetName = 31

// Service is a tiny façade over the table store that produces XLSX bytes.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// ExportTablesXLSX writes the current table set to a workbook, one sheet per table.
func (s *Service) ExportTablesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}
	tables := make([]store.NamedTable, 0, snap.Len())
	for _, name := range snap.Names() {
		t, err := snap.Get(name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := Workbook(tables)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "ingestion_id", snap.IngestionID, "error", err)
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"ingestion_id", snap.IngestionID,
		"tables", len(tables),
		"bytes", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Workbook renders tables into XLSX bytes. Cells that parse as numbers are
// written as numbers.
func Workbook(tables []store.NamedTable) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", IndexSheet); err != nil {
		return nil, err
	}
	for i, h := range []string{"Table", "Rows", "Columns", "Sheet"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(IndexSheet, cell, h)
	}

	used := map[string]struct{}{strings.ToLower(IndexSheet): {}}
	for i, t := range tables {
		sheet := SheetName(t.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", sheet, err)
		}
		for r, row := range t.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
					return nil, fmt.Errorf("write %s!%s: %w", sheet, cell, err)
				}
			}
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			_ = f.SetCellValue(IndexSheet, cell, v)
		}
		write(1, t.Name)
		write(2, len(t.Rows))
		write(3, t.NumCols())
		write(4, sheet)
	}

	_ = f.SetColWidth(IndexSheet, "A", "A", 32)
	_ = f.SetColWidth(IndexSheet, "D", "D", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetName turns a table name into a legal, unused sheet name and marks it used.
// Sheet names are unique ignoring case and capped at 31 characters.
func SheetName(name string, used map[string]struct{}) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Table"
	}

	candidate := truncate(base, maxSheetName)
	for n := 1; ; n++ {
		if _, taken := used[strings.ToLower(candidate)]; !taken {
			break
		}
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func cellValue(s string) any {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || strings.ContainsAny(s, "xXpP") {
		return s
	}
	return f
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}
