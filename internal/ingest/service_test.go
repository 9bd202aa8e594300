package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/xltables/constants"
	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/repository"
	"github.com/joseph-ayodele/xltables/internal/segment"
	"github.com/joseph-ayodele/xltables/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// workbook writes rows (row-major, starting at A1) to an in-memory xlsx.
func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row %d: %v", r, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func sampleWorkbook(t *testing.T) []byte {
	return workbook(t, [][]any{
		{"DISCOUNT RATE", nil, nil, nil, "GROWTH RATES"},
		{"Rate", 0.1, nil, nil, "Year", 1, 2},
		{"WACC", 0.08, nil, nil, "Growth", 0.05, 0.06},
		{},
		{"OPERATING CASHFLOWS"},
		{"Year", 1, 2, 3},
		{"Revenue", 100, "abc", 50.5},
	})
}

func TestService_IngestPublishesTables(t *testing.T) {
	st := store.New()
	svc := NewService(st, segment.DefaultConfig(), discardLogger())

	res, err := svc.Ingest(context.Background(), "uploads/model.xlsx", sampleWorkbook(t))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := []string{"DISCOUNT RATE", "GROWTH RATES", "OPERATING CASHFLOWS"}
	if !reflect.DeepEqual(res.Tables, want) {
		t.Fatalf("tables = %v, want %v", res.Tables, want)
	}
	if res.Filename != "model.xlsx" || len(res.HashHex) != 64 {
		t.Errorf("result = %+v", res)
	}

	names, err := st.Names()
	if err != nil || !reflect.DeepEqual(names, want) {
		t.Fatalf("store names = %v, %v", names, err)
	}
	ocf, err := st.Get("OPERATING CASHFLOWS")
	if err != nil {
		t.Fatal(err)
	}
	wantRows := [][]string{{"Year", "1", "2", "3"}, {"Revenue", "100", "abc", "50.5"}}
	if !reflect.DeepEqual(ocf.Rows, wantRows) {
		t.Errorf("rows = %v, want %v", ocf.Rows, wantRows)
	}
}

func TestService_IngestLegacyWorkbook(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "decode", "testdata", "model.xls"))
	if err != nil {
		t.Fatal(err)
	}
	st := store.New()
	svc := NewService(st, segment.DefaultConfig(), discardLogger())

	res, err := svc.Ingest(context.Background(), "legacy/model.xls", data)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !reflect.DeepEqual(res.Tables, []string{"OPERATING CASHFLOWS"}) {
		t.Fatalf("tables = %v", res.Tables)
	}
	ocf, err := st.Get("OPERATING CASHFLOWS")
	if err != nil {
		t.Fatal(err)
	}
	wantRows := [][]string{{"Year", "2024", "2025"}, {"Revenue", "100", "50.5"}, {"Total", "150.5", ""}}
	if !reflect.DeepEqual(ocf.Rows, wantRows) {
		t.Errorf("rows = %v, want %v", ocf.Rows, wantRows)
	}
}

func TestService_FailedIngestKeepsPreviousTables(t *testing.T) {
	st := store.New()
	svc := NewService(st, segment.DefaultConfig(), discardLogger())
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, "model.xlsx", sampleWorkbook(t)); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	before, _ := st.Snapshot()

	if _, err := svc.Ingest(ctx, "model.xlsx", []byte("not a workbook")); !errors.Is(err, common.ErrMalformedInput) {
		t.Fatalf("bad bytes err = %v", err)
	}
	if _, err := svc.Ingest(ctx, "model.csv", sampleWorkbook(t)); !errors.Is(err, common.ErrMalformedInput) {
		t.Fatalf("bad extension err = %v", err)
	}

	after, err := st.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("store replaced by a failed ingestion")
	}
	if _, err := st.Get("DISCOUNT RATE"); err != nil {
		t.Errorf("previous table lost: %v", err)
	}
}

func TestService_FailedFirstIngestLeavesStoreEmpty(t *testing.T) {
	st := store.New()
	svc := NewService(st, segment.DefaultConfig(), discardLogger())
	if _, err := svc.Ingest(context.Background(), "x.xlsx", nil); err == nil {
		t.Fatal("expected error for empty upload")
	}
	if _, err := st.Names(); !errors.Is(err, common.ErrEmptyStore) {
		t.Errorf("store err = %v, want ErrEmptyStore", err)
	}
}

func TestService_HistoryAndIngestPath(t *testing.T) {
	logger := discardLogger()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close(logger)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := NewService(store.New(), segment.DefaultConfig(), logger,
		WithHistory(repository.NewIngestionRepository(db, logger)))

	path := filepath.Join(t.TempDir(), "model.xlsx")
	if err := os.WriteFile(path, sampleWorkbook(t), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.IngestPath(ctx, path); err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	_, _ = svc.Ingest(ctx, "broken.xlsx", []byte("zzz"))

	hist, err := svc.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history has %d rows, want 2", len(hist))
	}
	statuses := map[string]constants.IngestionStatus{}
	for _, h := range hist {
		statuses[h.Filename] = h.Status
	}
	if statuses["model.xlsx"] != constants.IngestionSucceeded || statuses["broken.xlsx"] != constants.IngestionFailed {
		t.Errorf("statuses = %v", statuses)
	}
}
