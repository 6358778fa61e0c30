// Package item implements the Item repository using PostgreSQL.
package item

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

const table = "items"

var columns = []string{
	"id", "name", "item_type", "department_id", "version",
	"description", "created_by", "updated_by", "created_at", "updated_at",
}

// Repo provides item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new item repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns an item by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}

	item, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "item", id)
	}
	return item, nil
}

// List returns items the filter allows, newest first.
func (r *Repo) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	query := psql.Select(columns...).From(table).OrderBy("created_at DESC")
	query = applyFilter(query, filter)
	return r.list(ctx, query)
}

// Search returns items matching the keyword in name or description,
// restricted by the filter, newest first.
func (r *Repo) Search(ctx context.Context, keyword string, filter domain.ItemFilter) ([]domain.Item, error) {
	pattern := "%" + keyword + "%"
	query := psql.Select(columns...).From(table).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		}).
		OrderBy("created_at DESC")
	query = applyFilter(query, filter)
	return r.list(ctx, query)
}

// Create inserts a new item and returns the persisted row.
func (r *Repo) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Insert(table).
		Columns(columns...).
		Values(item.ID, item.Name, item.Type, item.DepartmentID, item.Version,
			item.Description, item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item insert: %w", err)
	}

	created, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "item", item.ID)
	}
	return created, nil
}

// Update modifies the mutable fields of an item. CreatedBy, CreatedAt,
// and DepartmentID are never touched here.
func (r *Repo) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Update(table).
		Set("name", item.Name).
		Set("item_type", item.Type).
		Set("description", item.Description).
		Set("version", item.Version).
		Set("updated_by", item.UpdatedBy).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item update: %w", err)
	}

	updated, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "item", item.ID)
	}
	return updated, nil
}

// Touch updates only updated_by/updated_at, used by the final pipeline save.
func (r *Repo) Touch(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Update(table).
		Set("updated_by", updatedBy).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build item touch: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "item", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes an item. History records are kept; the audit trail
// outlives the item.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build item delete: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "item", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) list(ctx context.Context, query squirrel.SelectBuilder) ([]domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item list: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "item", uuid.Nil)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, postgres.MapError(err, "item", uuid.Nil)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// applyFilter narrows the query to the caller's permission scope.
// Filtering happens in SQL so unauthorized rows are never read.
func applyFilter(query squirrel.SelectBuilder, filter domain.ItemFilter) squirrel.SelectBuilder {
	if filter.DepartmentID != nil {
		query = query.Where(squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	if filter.CreatedBy != nil {
		query = query.Where(squirrel.Eq{"created_by": *filter.CreatedBy})
	}
	return query
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	err := row.Scan(
		&item.ID, &item.Name, &item.Type, &item.DepartmentID, &item.Version,
		&item.Description, &item.CreatedBy, &item.UpdatedBy, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func columnList() string {
	return strings.Join(columns, ", ")
}
