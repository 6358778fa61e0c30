package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laveleven/labelai-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates an active user with the given role and department.
// Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role domain.Role, departmentID *string) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:           uuid.New(),
		Username:     "testuser-" + suffix,
		Email:        "testuser-" + suffix + "@example.com",
		PasswordHash: "$2a$10$test-hash-" + suffix,
		Role:         role,
		DepartmentID: departmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, department_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.Email, user.PasswordHash, string(user.Role),
		user.DepartmentID, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return user
}

// SeedItem creates an item owned by the given user. Returns a filled
// domain.Item.
func SeedItem(t *testing.T, pool *pgxpool.Pool, createdBy uuid.UUID, departmentID *string) domain.Item {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	item := domain.Item{
		ID:           uuid.New(),
		Name:         "Test Label " + suffix,
		Type:         "FOOD",
		DepartmentID: departmentID,
		Version:      domain.DefaultItemVersion,
		CreatedBy:    createdBy,
		UpdatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO items (id, name, item_type, department_id, version, description, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.Name, item.Type, item.DepartmentID, item.Version, item.Description,
		item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedItem insert item: %v", err)
	}

	return item
}

// SeedSnapshot creates a stage snapshot for an item. Returns a filled
// domain.Snapshot.
func SeedSnapshot(t *testing.T, pool *pgxpool.Pool, itemID uuid.UUID, stage domain.Step) domain.Snapshot {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	snap := domain.Snapshot{
		ID:        uuid.New(),
		ItemID:    itemID,
		Stage:     stage,
		Data:      json.RawMessage(`{"seed":"` + uniqueSuffix() + `"}`),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO stage_snapshots (id, item_id, stage, image_url, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		snap.ID, snap.ItemID, string(snap.Stage), snap.ImageURL, snap.Data, snap.CreatedAt, snap.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSnapshot insert snapshot: %v", err)
	}

	return snap
}
