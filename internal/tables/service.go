package tables

import (
	"log/slog"

	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/resolve"
	"github.com/joseph-ayodele/xltables/internal/store"
)

// Service answers queries against the current table set.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(s *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger}
}

// Details is the row listing of one table.
type Details struct {
	TableName string
	RowNames  []string
}

// RowSumResult is the rounded sum of one row.
type RowSumResult struct {
	TableName string
	RowName   string
	Sum       float64
}

// RowStatsResult is the numeric summary of one row.
type RowStatsResult struct {
	TableName string
	RowName   string
	Stats     Stats
}

// ListTables returns the table names in ingestion order.
func (s *Service) ListTables() ([]string, error) {
	return s.store.Names()
}

// Details lists the row names of the table best matching query.
func (s *Service) Details(query string) (Details, error) {
	t, err := s.lookup(query)
	if err != nil {
		return Details{}, err
	}
	if len(t.Rows) == 0 {
		return Details{}, common.NewAppError("INVALID_ARGUMENT", "table '"+t.Name+"' has no data", common.ErrInvalidInput)
	}
	return Details{TableName: t.Name, RowNames: RowNames(t)}, nil
}

// Debug returns a raw view of the table best matching query.
func (s *Service) Debug(query string) (DebugView, error) {
	t, err := s.lookup(query)
	if err != nil {
		return DebugView{}, err
	}
	return Debug(query, t), nil
}

// RowSum sums the numeric cells of the row best matching rowQuery.
func (s *Service) RowSum(tableQuery, rowQuery string) (RowSumResult, error) {
	t, idx, err := s.lookupRow(tableQuery, rowQuery)
	if err != nil {
		return RowSumResult{}, err
	}
	res := RowSumResult{
		TableName: t.Name,
		RowName:   resolve.RowLabel(t.Rows[idx]),
		Sum:       Round4(RowSum(t.Rows[idx])),
	}
	s.logger.Debug("query.row_sum", "table", res.TableName, "row", res.RowName, "sum", res.Sum)
	return res, nil
}

// RowStats summarises the numeric cells of the row best matching rowQuery.
func (s *Service) RowStats(tableQuery, rowQuery string) (RowStatsResult, error) {
	t, idx, err := s.lookupRow(tableQuery, rowQuery)
	if err != nil {
		return RowStatsResult{}, err
	}
	return RowStatsResult{
		TableName: t.Name,
		RowName:   resolve.RowLabel(t.Rows[idx]),
		Stats:     RowStats(t.Rows[idx]),
	}, nil
}

func (s *Service) lookup(query string) (store.NamedTable, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return store.NamedTable{}, err
	}
	name, err := resolve.Table(snap.Names(), query)
	if err != nil {
		s.logger.Debug("query.table_not_resolved", "query", query, "error", err)
		return store.NamedTable{}, err
	}
	return snap.Get(name)
}

func (s *Service) lookupRow(tableQuery, rowQuery string) (store.NamedTable, int, error) {
	t, err := s.lookup(tableQuery)
	if err != nil {
		return store.NamedTable{}, -1, err
	}
	idx, err := resolve.Row(t.Rows, rowQuery)
	if err != nil {
		return store.NamedTable{}, -1, err
	}
	return t, idx, nil
}
