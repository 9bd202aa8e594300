package store

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/xltables/internal/common"
)

func TestStore_EmptyBeforeFirstReplace(t *testing.T) {
	s := New()
	if _, err := s.Names(); !errors.Is(err, common.ErrEmptyStore) {
		t.Errorf("Names err = %v, want ErrEmptyStore", err)
	}
	if _, err := s.Get("x"); !errors.Is(err, common.ErrEmptyStore) {
		t.Errorf("Get err = %v, want ErrEmptyStore", err)
	}
}

func TestStore_ReplaceAllAndGet(t *testing.T) {
	s := New()
	rows := [][]string{{"Revenue", "1"}, {"Cost", "2"}}
	s.ReplaceAll([]NamedTable{
		{Name: "B", Rows: rows},
		{Name: "A", Rows: [][]string{{"x", "y"}, {"z", "w"}}},
	}, Meta{IngestionID: uuid.New(), Source: "book.xlsx", LoadedAt: time.Now()})

	rows[0][0] = "mutated"

	names, err := s.Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"B", "A"}) {
		t.Errorf("names = %v, want insertion order", names)
	}

	got, err := s.Get("B")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Rows[0][0] != "Revenue" {
		t.Errorf("store aliases caller rows")
	}
	if got.NumCols() != 2 {
		t.Errorf("NumCols = %d", got.NumCols())
	}
}

func TestStore_GetUnknownListsAvailable(t *testing.T) {
	s := New()
	s.ReplaceAll([]NamedTable{{Name: "A"}, {Name: "B"}}, Meta{})

	_, err := s.Get("C")
	var nf *common.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("NotFoundError should match ErrNotFound")
	}
	if !reflect.DeepEqual(nf.Available, []string{"A", "B"}) {
		t.Errorf("available = %v", nf.Available)
	}
}

func TestStore_ReplaceIsWholesale(t *testing.T) {
	s := New()
	s.ReplaceAll([]NamedTable{{Name: "old"}}, Meta{})
	s.ReplaceAll([]NamedTable{{Name: "new"}}, Meta{})
	if _, err := s.Get("old"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("old table survived replacement: %v", err)
	}
}

func TestStore_ConcurrentReadersSeeWholeSets(t *testing.T) {
	s := New()
	set := func(gen int) []NamedTable {
		out := make([]NamedTable, 5)
		for i := range out {
			out[i] = NamedTable{Name: fmt.Sprintf("t%d", i), Rows: [][]string{{fmt.Sprint(gen)}}}
		}
		return out
	}
	s.ReplaceAll(set(0), Meta{})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan error, 8)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, err := s.Snapshot()
				if err != nil {
					errs <- err
					return
				}
				first, _ := snap.Get("t0")
				for _, name := range snap.Names() {
					tbl, _ := snap.Get(name)
					if tbl.Rows[0][0] != first.Rows[0][0] {
						errs <- fmt.Errorf("mixed generations in one snapshot")
						return
					}
				}
			}
		}()
	}
	for gen := 1; gen < 200; gen++ {
		s.ReplaceAll(set(gen), Meta{})
	}
	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
