package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the single current output of one pipeline stage for an
// item. The payload is an opaque serialized document; the core never
// interprets it. At most one snapshot exists per (item, stage) — a new
// save replaces the previous one.
type Snapshot struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	Stage     Step
	ImageURL  *string // set for SCAN only: the original upload filename
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// History is one immutable audit record. It is never mutated or deleted
// by normal operation; ChangedAt is set once at insert.
type History struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	Step      Step
	FieldName string
	Action    ActionType
	Payload   json.RawMessage
	ChangedBy uuid.UUID
	ChangedAt time.Time
}

// HistoryFilter restricts history listing to records whose referenced
// item the caller may view. Both fields nil means unrestricted.
type HistoryFilter struct {
	DepartmentID *string
	CreatedBy    *uuid.UUID
}
