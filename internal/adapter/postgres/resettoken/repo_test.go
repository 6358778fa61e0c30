package resettoken_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/adapter/postgres/resettoken"
	"github.com/laveleven/labelai-backend/internal/adapter/postgres/testhelper"
	"github.com/laveleven/labelai-backend/internal/domain"
)

func TestRepo_Create_Get_Consume(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := resettoken.New(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool, domain.RoleUser, nil)

	tok := &domain.PasswordResetToken{
		Token:     "reset-" + uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, tok); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	got, err := repo.Get(ctx, tok.Token)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("Get returned wrong user: %s", got.UserID)
	}

	if err := repo.Consume(ctx, tok.Token); err != nil {
		t.Fatalf("Consume: unexpected error: %v", err)
	}

	if _, err := repo.Get(ctx, tok.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after Consume: error = %v, want ErrNotFound", err)
	}
}

func TestRepo_Get_ExpiredIsNotFound(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := resettoken.New(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool, domain.RoleUser, nil)

	tok := &domain.PasswordResetToken{
		Token:     "expired-" + uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := repo.Create(ctx, tok); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	_, err := repo.Get(ctx, tok.Token)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get expired: error = %v, want ErrNotFound", err)
	}
}

func TestRepo_DeleteExpired_PurgesOnlyExpired(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := resettoken.New(pool)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool, domain.RoleUser, nil)

	live := &domain.PasswordResetToken{
		Token:     "live-" + uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	stale := &domain.PasswordResetToken{
		Token:     "stale-" + uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	for _, tok := range []*domain.PasswordResetToken{live, stale} {
		if err := repo.Create(ctx, tok); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	deleted, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: unexpected error: %v", err)
	}
	if deleted < 1 {
		t.Fatalf("expected at least one purged token, got %d", deleted)
	}

	if _, err := repo.Get(ctx, live.Token); err != nil {
		t.Errorf("live token purged: %v", err)
	}
	var count int
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM password_reset_tokens WHERE token = $1`, stale.Token,
	).Scan(&count); err != nil {
		t.Fatalf("count stale token: %v", err)
	}
	if count != 0 {
		t.Error("stale token still present after DeleteExpired")
	}
}
