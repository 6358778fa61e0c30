// Package history implements the audit-trail repository using
// PostgreSQL. Records are append-only: there is no update or delete
// path, and changed_at is set once at insert.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/laveleven/labelai-backend/internal/adapter/postgres"
	"github.com/laveleven/labelai-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const table = "history"

var columns = []string{
	"id", "item_id", "step_name", "field_name", "action_type",
	"payload", "changed_by", "changed_at",
}

// Repo provides audit-record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new history repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Append inserts one immutable record and returns it with the
// server-set timestamp.
func (r *Repo) Append(ctx context.Context, rec *domain.History) (*domain.History, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Insert(table).
		Columns("id", "item_id", "step_name", "field_name", "action_type", "payload", "changed_by").
		Values(rec.ID, rec.ItemID, rec.Step, rec.FieldName, rec.Action, rec.Payload, rec.ChangedBy).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history insert: %w", err)
	}

	saved, err := scanHistory(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "history", rec.ID)
	}
	return saved, nil
}

// GetByID returns one record.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.History, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rec, err := scanHistory(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "history", id)
	}
	return rec, nil
}

// ListByItem returns all records for an item, newest first.
func (r *Repo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.History, error) {
	query := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("changed_at DESC")
	return r.list(ctx, query)
}

// ListByItemAndStep returns records for one step of an item, newest first.
func (r *Repo) ListByItemAndStep(ctx context.Context, itemID uuid.UUID, step domain.Step) ([]domain.History, error) {
	query := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"item_id": itemID, "step_name": step}).
		OrderBy("changed_at DESC")
	return r.list(ctx, query)
}

// List returns records visible under the filter, newest first. The
// filter joins through items so scoping happens in SQL — unauthorized
// rows are never read.
func (r *Repo) List(ctx context.Context, filter domain.HistoryFilter) ([]domain.History, error) {
	query := psql.Select(qualifiedFor("h")...).From(table + " h").
		OrderBy("h.changed_at DESC")

	if filter.DepartmentID != nil || filter.CreatedBy != nil {
		query = query.Join("items i ON i.id = h.item_id")
		if filter.DepartmentID != nil {
			query = query.Where(squirrel.Eq{"i.department_id": *filter.DepartmentID})
		}
		if filter.CreatedBy != nil {
			query = query.Where(squirrel.Eq{"i.created_by": *filter.CreatedBy})
		}
	}

	return r.list(ctx, query)
}

func (r *Repo) list(ctx context.Context, query squirrel.SelectBuilder) ([]domain.History, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history list: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "history", uuid.Nil)
	}
	defer rows.Close()

	var recs []domain.History
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, postgres.MapError(err, "history", uuid.Nil)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func qualifiedFor(alias string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*domain.History, error) {
	var rec domain.History
	err := row.Scan(
		&rec.ID, &rec.ItemID, &rec.Step, &rec.FieldName, &rec.Action,
		&rec.Payload, &rec.ChangedBy, &rec.ChangedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
