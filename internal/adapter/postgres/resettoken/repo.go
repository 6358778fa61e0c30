// Package resettoken implements a durable time-boxed store for
// password-reset tokens. Expiry is checked on read and tokens are
// removed on successful use, so a token can never be replayed.
package resettoken

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/laveleven/labelai-backend/internal/adapter/postgres"
	"github.com/laveleven/labelai-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const table = "password_reset_tokens"

// Repo provides reset-token persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reset-token repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create stores a token.
func (r *Repo) Create(ctx context.Context, tok *domain.PasswordResetToken) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Insert(table).
		Columns("token", "user_id", "expires_at").
		Values(tok.Token, tok.UserID, tok.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reset_token insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "reset_token", tok.UserID)
	}
	return nil
}

// Get returns a live token. An expired token is treated as absent.
func (r *Repo) Get(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.
		Select("token", "user_id", "expires_at", "created_at").
		From(table).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reset_token query: %w", err)
	}

	var tok domain.PasswordResetToken
	err = q.QueryRow(ctx, sql, args...).Scan(&tok.Token, &tok.UserID, &tok.ExpiresAt, &tok.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "reset_token", uuid.Nil)
	}

	if tok.IsExpired(time.Now()) {
		return nil, fmt.Errorf("reset_token expired: %w", domain.ErrNotFound)
	}
	return &tok, nil
}

// Consume removes a token after successful use.
func (r *Repo) Consume(ctx context.Context, token string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Delete(table).Where(squirrel.Eq{"token": token}).ToSql()
	if err != nil {
		return fmt.Errorf("build reset_token delete: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "reset_token", uuid.Nil)
	}
	return nil
}

// DeleteExpired purges tokens past their expiry; returns the count removed.
func (r *Repo) DeleteExpired(ctx context.Context) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := psql.Delete(table).
		Where(squirrel.Expr("expires_at <= now()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build reset_token purge: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "reset_token", uuid.Nil)
	}
	return tag.RowsAffected(), nil
}
