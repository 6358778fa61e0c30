// Package snapshot implements the stage-snapshot repository using
// PostgreSQL. One row holds the single current output of one pipeline
// stage for one item; saving again replaces the row in place.
package snapshot

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

const table = "stage_snapshots"

var columns = []string{
	"id", "item_id", "stage", "image_url", "data", "created_at", "updated_at",
}

// Repo provides stage-snapshot persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new snapshot repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Upsert writes the current snapshot for (item, stage), replacing any
// previous one. The unique index on (item_id, stage) makes the replace
// atomic under concurrent saves — last writer wins.
func (r *Repo) Upsert(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Insert(table).
		Columns("id", "item_id", "stage", "image_url", "data").
		Values(snap.ID, snap.ItemID, snap.Stage, snap.ImageURL, snap.Data).
		Suffix(`ON CONFLICT (item_id, stage) DO UPDATE
			SET image_url = EXCLUDED.image_url,
			    data = EXCLUDED.data,
			    updated_at = now()
			RETURNING ` + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot upsert: %w", err)
	}

	saved, err := scanSnapshot(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "snapshot", snap.ID)
	}
	return saved, nil
}

// GetByItemAndStage returns the current snapshot for one stage of an item.
func (r *Repo) GetByItemAndStage(ctx context.Context, itemID uuid.UUID, stage domain.Step) (*domain.Snapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"item_id": itemID, "stage": stage}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}

	snap, err := scanSnapshot(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "snapshot", itemID)
	}
	return snap, nil
}

// ListByItem returns all current snapshots for an item.
func (r *Repo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.Snapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("stage ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot list: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "snapshot", itemID)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, postgres.MapError(err, "snapshot", itemID)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// DeleteByItem removes all snapshots of an item. Used by item deletion.
func (r *Repo) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Delete(table).Where(squirrel.Eq{"item_id": itemID}).ToSql()
	if err != nil {
		return fmt.Errorf("build snapshot delete: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "snapshot", itemID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := row.Scan(
		&snap.ID, &snap.ItemID, &snap.Stage, &snap.ImageURL,
		&snap.Data, &snap.CreatedAt, &snap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
