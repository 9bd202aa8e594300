// Package store keeps the current set of named tables in memory.
package store

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/xltables/internal/common"
)

// NamedTable is a rectangular table of string cells.
type NamedTable struct {
	Name string
	Rows [][]string
}

// NumCols is the width of the table, 0 when it has no rows.
func (t NamedTable) NumCols() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Snapshot is one immutable, fully published table set.
type Snapshot struct {
	IngestionID uuid.UUID
	Source      string
	LoadedAt    time.Time

	names  []string
	tables map[string]NamedTable
}

// Names returns the table names in ingestion order.
func (s *Snapshot) Names() []string { return slices.Clone(s.names) }

// Len is the number of tables.
func (s *Snapshot) Len() int { return len(s.names) }

// Get returns a copy of the table called name, matched exactly.
func (s *Snapshot) Get(name string) (NamedTable, error) {
	t, ok := s.tables[name]
	if !ok {
		return NamedTable{}, common.NewNotFoundError("table", name, s.Names())
	}
	return NamedTable{Name: t.Name, Rows: copyRows(t.Rows)}, nil
}

// Store holds the current Snapshot. Readers never see a partially replaced set.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// New returns an empty store.
func New() *Store { return &Store{} }

// Meta describes where a table set came from.
type Meta struct {
	IngestionID uuid.UUID
	Source      string
	LoadedAt    time.Time
}

// ReplaceAll publishes tables as the new table set, in the given order.
// Tables and their rows are copied; later changes by the caller are not seen.
func (s *Store) ReplaceAll(tables []NamedTable, meta Meta) *Snapshot {
	snap := &Snapshot{
		IngestionID: meta.IngestionID,
		Source:      meta.Source,
		LoadedAt:    meta.LoadedAt,
		names:       make([]string, 0, len(tables)),
		tables:      make(map[string]NamedTable, len(tables)),
	}
	for _, t := range tables {
		if _, dup := snap.tables[t.Name]; !dup {
			snap.names = append(snap.names, t.Name)
		}
		snap.tables[t.Name] = NamedTable{Name: t.Name, Rows: copyRows(t.Rows)}
	}
	s.current.Store(snap)
	return snap
}

// Snapshot returns the current table set, or ErrEmptyStore before the first ingestion.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, common.ErrEmptyStore
	}
	return snap, nil
}

// Names lists the current table names.
func (s *Store) Names() ([]string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Names(), nil
}

// Get returns the current table called name.
func (s *Store) Get(name string) (NamedTable, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return NamedTable{}, err
	}
	return snap.Get(name)
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
