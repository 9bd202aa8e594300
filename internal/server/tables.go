package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/entity"
	"github.com/joseph-ayodele/xltables/internal/export"
	"github.com/joseph-ayodele/xltables/internal/ingest"
	"github.com/joseph-ayodele/xltables/internal/tables"
)

// MaxNameLength bounds table and row queries.
const MaxNameLength = 256

// IngestService is what the transport needs from the ingest layer.
type IngestService interface {
	ingest.Ingestor
	History(ctx context.Context, limit int) ([]*entity.Ingestion, error)
	Lookup(ctx context.Context, id uuid.UUID) (*entity.Ingestion, error)
}

type TablesService struct {
	ingestor  IngestService
	queries   *tables.Service
	exporter  *export.Service
	maxUpload int
	logger    *slog.Logger
}

func NewTablesService(ing IngestService, q *tables.Service, exp *export.Service, maxUpload int, logger *slog.Logger) *TablesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TablesService{ingestor: ing, queries: q, exporter: exp, maxUpload: maxUpload, logger: logger}
}

var _ TablesServer = (*TablesService)(nil)

// UploadWorkbook takes {filename, content} where content is base64 workbook bytes.
func (s *TablesService) UploadWorkbook(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filename := strings.TrimSpace(str(req, "filename"))
	content := str(req, "content")
	v := common.NewValidator().
		Field("filename", filename, common.Required, common.MaxLength(MaxNameLength)).
		Field("content", content, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, common.InvalidArgumentError("content must be base64 encoded")
	}
	if s.maxUpload > 0 && len(data) > s.maxUpload {
		return nil, common.InvalidArgumentErrorf("upload is %d bytes, limit is %d", len(data), s.maxUpload)
	}

	common.LoggerFromContext(ctx, s.logger).Info("upload.received", "filename", filename, "bytes", len(data))
	res, err := s.ingestor.Ingest(ctx, filename, data)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(ingestionResultMap(res))
}

// IngestPath ingests a workbook that already sits on the server's filesystem.
func (s *TablesService) IngestPath(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := strings.TrimSpace(str(req, "path"))
	if err := common.ValidateAndReturnError(common.NewValidator().Field("path", path, common.Required)); err != nil {
		return nil, err
	}
	res, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(ingestionResultMap(res))
}

func (s *TablesService) ListTables(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	names, err := s.queries.ListTables()
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{"tables": strings1D(names)})
}

func (s *TablesService) GetTableDetails(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	table, err := nameArg(req, "table")
	if err != nil {
		return nil, err
	}
	d, err := s.queries.Details(table)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"table_name": d.TableName,
		"row_names":  strings1D(d.RowNames),
	})
}

func (s *TablesService) DebugTable(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	table, err := nameArg(req, "table")
	if err != nil {
		return nil, err
	}
	d, err := s.queries.Debug(table)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"requested_name": d.RequestedName,
		"table_name":     d.TableName,
		"num_rows":       d.NumRows,
		"num_cols":       d.NumCols,
		"first_rows":     strings2D(d.FirstRows),
		"first_cells":    strings1D(d.FirstCells),
	})
}

func (s *TablesService) RowSum(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	table, row, err := tableRowArgs(req)
	if err != nil {
		return nil, err
	}
	r, err := s.queries.RowSum(table, row)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"table_name": r.TableName,
		"row_name":   r.RowName,
		"sum":        r.Sum,
	})
}

func (s *TablesService) RowStats(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	table, row, err := tableRowArgs(req)
	if err != nil {
		return nil, err
	}
	r, err := s.queries.RowStats(table, row)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"table_name": r.TableName,
		"row_name":   r.RowName,
		"count":      r.Stats.Count,
		"sum":        tables.Round4(r.Stats.Sum),
		"mean":       tables.Round4(r.Stats.Mean),
		"min":        r.Stats.Min,
		"max":        r.Stats.Max,
	})
}

// ExportTables returns the current table set as base64 XLSX bytes in "xlsx".
func (s *TablesService) ExportTables(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	xlsx, err := s.exporter.ExportTablesXLSX(ctx)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{"xlsx": xlsx})
}

// ListIngestions takes an optional numeric limit (default 20).
func (s *TablesService) ListIngestions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := 20
	if v, ok := req.GetFields()["limit"]; ok {
		limit = int(v.GetNumberValue())
	}
	if limit < 0 {
		return nil, common.InvalidArgumentError("limit must not be negative")
	}
	recs, err := s.ingestor.History(ctx, limit)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("ingestions.list.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	out := make([]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, ingestionMap(r))
	}
	return newStruct(map[string]any{"ingestions": out})
}

func (s *TablesService) GetIngestion(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := strings.TrimSpace(str(req, "id"))
	id, err := uuid.Parse(raw)
	if err != nil || raw == "" {
		return nil, common.InvalidArgumentError("id must be a UUID")
	}
	rec, err := s.ingestor.Lookup(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(ingestionMap(rec))
}

func nameArg(req *structpb.Struct, field string) (string, error) {
	v := str(req, field)
	err := common.ValidateAndReturnError(common.NewValidator().
		Field(field, v, common.Required, common.MaxLength(MaxNameLength)))
	return v, err
}

func tableRowArgs(req *structpb.Struct) (string, string, error) {
	table, row := str(req, "table"), str(req, "row")
	v := common.NewValidator().
		Field("table", table, common.Required, common.MaxLength(MaxNameLength)).
		Field("row", row, common.Required, common.MaxLength(MaxNameLength))
	return table, row, common.ValidateAndReturnError(v)
}

func ingestionResultMap(r ingest.IngestionResult) map[string]any {
	return map[string]any{
		"message":      "Tables extracted successfully",
		"ingestion_id": r.IngestionID.String(),
		"filename":     r.Filename,
		"content_hash": r.HashHex,
		"file_size":    r.FileSize,
		"sheet":        r.Sheet,
		"tables":       strings1D(r.Tables),
		"discarded":    r.Discarded,
		"uploaded_at":  r.UploadedAt.UTC().Format(time.RFC3339),
	}
}

func ingestionMap(r *entity.Ingestion) map[string]any {
	return map[string]any{
		"id":           r.ID.String(),
		"filename":     r.Filename,
		"sheet":        r.Sheet,
		"content_hash": r.ContentHash,
		"file_size":    r.FileSize,
		"status":       string(r.Status),
		"error":        r.Error,
		"tables":       strings1D(r.TableNames),
		"discarded":    r.Discarded,
		"created_at":   r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
