package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IngestionResult is the outcome of one successful upload.
type IngestionResult struct {
	IngestionID uuid.UUID
	Filename    string
	HashHex     string
	FileSize    int
	Sheet       string
	Tables      []string
	Discarded   int
	UploadedAt  time.Time
}

// Ingestor is the behavior the transport layer depends on.
type Ingestor interface {
	// Ingest decodes and segments an uploaded workbook and replaces the table set.
	Ingest(ctx context.Context, filename string, data []byte) (IngestionResult, error)
	// IngestPath ingests a workbook from the local filesystem.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
}
