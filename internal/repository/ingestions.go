package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/entity"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ingestionColumns = []string{
	"id", "filename", "sheet", "content_hash", "file_size",
	"status", "error", "table_names", "discarded", "created_at",
}

type IngestionRepository interface {
	Create(ctx context.Context, in *entity.Ingestion) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Ingestion, error)
	List(ctx context.Context, limit int) ([]*entity.Ingestion, error)
}

type ingestionRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewIngestionRepository(db *DB, logger *slog.Logger) IngestionRepository {
	return &ingestionRepo{
		db:     db,
		logger: logger,
	}
}

func (r *ingestionRepo) Create(ctx context.Context, in *entity.Ingestion) error {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	names := in.TableNames
	if names == nil {
		names = []string{}
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return common.WrapError(err, "marshal table names")
	}

	query, args := entsql.Dialect(r.db.Dialect).
		Insert("ingestions").
		Columns(ingestionColumns...).
		Values(
			in.ID.String(), in.Filename, in.Sheet, in.ContentHash, in.FileSize,
			string(in.Status), in.Error, string(namesJSON), in.Discarded,
			in.CreatedAt.UTC().Format(timeLayout),
		).
		Query()
	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to create ingestion", "ingestion_id", in.ID, "filename", in.Filename, "error", err)
		return errors.Join(common.ErrDatabase, err)
	}
	return nil
}

func (r *ingestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Ingestion, error) {
	sel := entsql.Dialect(r.db.Dialect).
		Select(ingestionColumns...).
		From(entsql.Table("ingestions")).
		Where(entsql.EQ("id", id.String()))
	out, err := r.query(ctx, sel)
	if err != nil {
		r.logger.Error("failed to get ingestion", "ingestion_id", id, "error", err)
		return nil, err
	}
	if len(out) == 0 {
		return nil, common.NewNotFoundError("ingestion", id.String(), nil)
	}
	return out[0], nil
}

// List returns the most recent ingestions first. limit <= 0 means no limit.
func (r *ingestionRepo) List(ctx context.Context, limit int) ([]*entity.Ingestion, error) {
	sel := entsql.Dialect(r.db.Dialect).
		Select(ingestionColumns...).
		From(entsql.Table("ingestions")).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	out, err := r.query(ctx, sel)
	if err != nil {
		r.logger.Error("failed to list ingestions", "error", err)
		return nil, err
	}
	return out, nil
}

func (r *ingestionRepo) query(ctx context.Context, sel *entsql.Selector) ([]*entity.Ingestion, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Ingestion
	for rows.Next() {
		var (
			id, created, names string
			in                 entity.Ingestion
		)
		if err := rows.Scan(&id, &in.Filename, &in.Sheet, &in.ContentHash, &in.FileSize,
			&in.Status, &in.Error, &names, &in.Discarded, &created); err != nil {
			return nil, errors.Join(common.ErrDatabase, err)
		}
		var err error
		if in.ID, err = uuid.Parse(id); err != nil {
			return nil, common.WrapError(err, fmt.Sprintf("parse ingestion id %q", id))
		}
		if in.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, common.WrapError(err, fmt.Sprintf("parse created_at %q", created))
		}
		if err := json.Unmarshal([]byte(names), &in.TableNames); err != nil {
			return nil, common.WrapError(err, "parse table names")
		}
		out = append(out, &in)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}
