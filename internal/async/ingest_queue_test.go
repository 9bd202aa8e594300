package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/xltables/internal/ingest"
)

type recordingIngestor struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingIngestor) IngestPath(_ context.Context, path string) (ingest.IngestionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	if path == "bad.xlsx" {
		return ingest.IngestionResult{}, errors.New("boom")
	}
	return ingest.IngestionResult{Filename: path}, nil
}

func TestIngestQueue_ProcessesInOrderAndDrains(t *testing.T) {
	ing := &recordingIngestor{}
	q := NewIngestQueue(ing, slog.New(slog.NewTextHandler(io.Discard, nil)), WithQueueSize(4))

	ctx := context.Background()
	for _, p := range []string{"a.xlsx", "bad.xlsx", "c.xlsx"} {
		if err := q.Enqueue(ctx, Job{Path: p}); err != nil {
			t.Fatalf("Enqueue(%s): %v", p, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	ing.mu.Lock()
	defer ing.mu.Unlock()
	want := []string{"a.xlsx", "bad.xlsx", "c.xlsx"}
	if len(ing.paths) != len(want) {
		t.Fatalf("processed %v, want %v", ing.paths, want)
	}
	for i := range want {
		if ing.paths[i] != want[i] {
			t.Errorf("job %d = %s, want %s", i, ing.paths[i], want[i])
		}
	}

	if err := q.Enqueue(ctx, Job{Path: "late.xlsx"}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue after shutdown = %v, want ErrQueueClosed", err)
	}
	q.Shutdown(ctx)
}
