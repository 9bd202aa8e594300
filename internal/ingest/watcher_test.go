package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStartWatcher_RequiresRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("expected error without roots")
	}
}

func TestStartWatcher_InitialScanSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"model.xlsx", "notes.txt", "~$model.xlsx", ".hidden.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	select {
	case got := <-events:
		if filepath.Base(got) != "model.xlsx" {
			t.Fatalf("first event = %s, want model.xlsx", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial scan event")
	}

	cancel()
	for p := range events {
		if filepath.Base(p) != "model.xlsx" {
			t.Errorf("unexpected event %s", p)
		}
	}
}

func TestStartWatcher_EmitsNewWorkbook(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	target := filepath.Join(dir, "upload.xlsx")
	if err := os.WriteFile(target, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-events:
		if got != target {
			t.Fatalf("event = %s, want %s", got, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event for new workbook")
	}
}

func TestStartWatcher_InitialScanBeyondBuffer(t *testing.T) {
	dir := t.TempDir()
	const n = 300
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, fmt.Sprintf("model-%03d.xlsx", i))
		if err := os.WriteFile(name, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	seen := make(map[string]bool, n)
	timeout := time.After(5 * time.Second)
	for len(seen) < n {
		select {
		case p := <-events:
			seen[p] = true
		case <-timeout:
			t.Fatalf("received %d of %d workbooks", len(seen), n)
		}
	}
}

func TestStartWatcher_ClosesWithPendingDebounce(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	events, errs, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, Debounce: time.Millisecond})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}
	for i := 0; i < 20; i++ {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("burst-%d.xlsx", i)), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(5 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		for range events {
		}
		for range errs {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher channels did not close after cancel")
	}
}
