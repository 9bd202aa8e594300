// Package ingest turns uploaded workbooks into the current table set.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/xltables/constants"
	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/decode"
	"github.com/joseph-ayodele/xltables/internal/entity"
	"github.com/joseph-ayodele/xltables/internal/repository"
	"github.com/joseph-ayodele/xltables/internal/segment"
	"github.com/joseph-ayodele/xltables/internal/store"
)

// Service runs decode → segment → publish as a single writer.
type Service struct {
	store   *store.Store
	cfg     segment.Config
	decode  decode.Options
	history repository.IngestionRepository
	logger  *slog.Logger

	// mu serializes ingestions so only one writer publishes at a time.
	mu sync.Mutex
}

type Option func(*Service)

// WithHistory records every ingestion attempt in repo.
func WithHistory(repo repository.IngestionRepository) Option {
	return func(s *Service) { s.history = repo }
}

// WithDecodeOptions sets the workbook sheet and value mode.
func WithDecodeOptions(o decode.Options) Option {
	return func(s *Service) { s.decode = o }
}

func NewService(st *store.Store, cfg segment.Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: st, cfg: cfg, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ Ingestor = (*Service)(nil)

// Ingest replaces the table set with the tables found in data. On any error the
// previous table set stays in place.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte) (IngestionResult, error) {
	start := time.Now()
	sum := sha256.Sum256(data)
	rec := &entity.Ingestion{
		ID:          uuid.New(),
		Filename:    filepath.Base(filename),
		Sheet:       s.decode.Sheet,
		ContentHash: hex.EncodeToString(sum[:]),
		FileSize:    len(data),
		CreatedAt:   start.UTC(),
	}

	res, err := s.ingest(ctx, rec, data)
	if err != nil {
		rec.Status = constants.IngestionFailed
		rec.Error = err.Error()
		s.logger.Error("ingest.failed", "ingestion_id", rec.ID, "filename", rec.Filename, "error", err)
	} else {
		rec.Status = constants.IngestionSucceeded
		rec.TableNames = res.Tables
		rec.Discarded = res.Discarded
		s.logger.Info("ingest.ok",
			"ingestion_id", rec.ID,
			"filename", rec.Filename,
			"tables", len(res.Tables),
			"discarded", res.Discarded,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	s.record(ctx, rec)
	return res, err
}

func (s *Service) ingest(ctx context.Context, rec *entity.Ingestion, data []byte) (IngestionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := decode.CheckFilename(rec.Filename); err != nil {
		return IngestionResult{}, err
	}
	g, err := decode.Bytes(data, s.decode)
	if err != nil {
		return IngestionResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return IngestionResult{}, err
	}

	seg := segment.Segment(g, s.cfg)
	tables := make([]store.NamedTable, 0, len(seg.Tables))
	for _, t := range seg.Tables {
		tables = append(tables, store.NamedTable{Name: t.Name, Rows: t.Cells.Records()})
		s.logger.Debug("ingest.table",
			"ingestion_id", rec.ID,
			"table", t.Name,
			"anchor_row", t.Anchor.Row,
			"anchor_col", t.Anchor.Col,
			"rows", t.Cells.Rows(),
			"cols", t.Cells.Cols(),
		)
	}

	s.store.ReplaceAll(tables, store.Meta{IngestionID: rec.ID, Source: rec.Filename, LoadedAt: rec.CreatedAt})

	return IngestionResult{
		IngestionID: rec.ID,
		Filename:    rec.Filename,
		HashHex:     rec.ContentHash,
		FileSize:    rec.FileSize,
		Sheet:       rec.Sheet,
		Tables:      seg.Names(),
		Discarded:   seg.Discarded(),
		UploadedAt:  rec.CreatedAt,
	}, nil
}

// IngestPath reads a workbook from disk and ingests it.
func (s *Service) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("abs path: %w", err)
	}
	if err := decode.CheckFilename(abs); err != nil {
		return IngestionResult{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		s.logger.Error("ingest.read_failed", "path", abs, "error", err)
		return IngestionResult{}, fmt.Errorf("read %s: %w", abs, err)
	}
	return s.Ingest(ctx, abs, data)
}

func (s *Service) record(ctx context.Context, rec *entity.Ingestion) {
	if s.history == nil {
		return
	}
	// History is best effort.
	if err := s.history.Create(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("ingest.history_failed", "ingestion_id", rec.ID, "error", err)
	}
}

// History lists recent ingestion attempts, newest first. It returns nothing
// when no history repository is configured.
func (s *Service) History(ctx context.Context, limit int) ([]*entity.Ingestion, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}

// Lookup returns one recorded ingestion attempt.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*entity.Ingestion, error) {
	if s.history == nil {
		return nil, common.NewNotFoundError("ingestion", id.String(), nil)
	}
	return s.history.GetByID(ctx, id)
}
