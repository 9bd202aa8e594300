package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_DefaultsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xltables.yaml")
	yaml := `
server:
  grpc_addr: ":9090"
segmentation:
  max_empty_row_ratio: 0.5
  min_rows: 3
ingest:
  debounce: 2s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XLTABLES_SEGMENTATION_MIN_COLS", "4")
	t.Setenv("XLTABLES_DATABASE_DSN", "file:test.db")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.GRPCAddr != ":9090" {
		t.Errorf("grpc_addr = %q", cfg.Server.GRPCAddr)
	}
	if cfg.Segmentation.MaxEmptyRowRatio != 0.5 || cfg.Segmentation.MaxEmptyColRatio != 0.6 {
		t.Errorf("ratios = %v/%v", cfg.Segmentation.MaxEmptyRowRatio, cfg.Segmentation.MaxEmptyColRatio)
	}
	if cfg.Segmentation.MinRows != 3 || cfg.Segmentation.MinCols != 4 {
		t.Errorf("mins = %d/%d", cfg.Segmentation.MinRows, cfg.Segmentation.MinCols)
	}
	if cfg.Ingest.Debounce != 2*time.Second {
		t.Errorf("debounce = %v", cfg.Ingest.Debounce)
	}
	if cfg.Database.DSN != "file:test.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	cfg.Segmentation.MaxEmptyRowRatio = 1.5
	cfg.Segmentation.MinCols = 0
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	for _, field := range []string{"max_empty_row_ratio", "min_cols", "log.level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}
