package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/laveleven/labelai-backend/internal/domain"
)

// SaveInput carries the accumulated stage results for the terminal
// save. Nil payloads mean the stage was not run; provided payloads are
// stored verbatim.
type SaveInput struct {
	ItemID           uuid.UUID
	OriginalFileName *string
	OCRResult        json.RawMessage
	StructureResult  json.RawMessage
	TranslateResult  json.RawMessage
	SketchResult     json.RawMessage
}

// Save is the terminal, transactional commit of a pipeline run. It
// upserts one snapshot per provided stage (replacing any previous
// snapshot for that item and stage), refreshes the item's update
// marker, and appends exactly one SKETCH/SAVE history entry. Either
// everything commits or nothing does; a malformed payload aborts the
// whole save with a serialization error.
func (s *Service) Save(ctx context.Context, input SaveInput) error {
	caller, item, err := s.loadEditable(ctx, input.ItemID)
	if err != nil {
		return err
	}

	stages := []struct {
		stage    domain.Step
		payload  json.RawMessage
		imageURL *string
	}{
		{domain.StepScan, input.OCRResult, input.OriginalFileName},
		{domain.StepSchema, input.StructureResult, nil},
		{domain.StepTranslate, input.TranslateResult, nil},
		{domain.StepSketch, input.SketchResult, nil},
	}

	for _, st := range stages {
		if st.payload != nil && !json.Valid(st.payload) {
			return fmt.Errorf("%s payload: %w", st.stage, domain.ErrSerialization)
		}
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.items.Touch(ctx, item.ID, caller.UserID); err != nil {
			return fmt.Errorf("touch item: %w", err)
		}

		now := time.Now().UTC()
		for _, st := range stages {
			if st.payload == nil {
				continue
			}
			if _, err := s.snapshots.Upsert(ctx, &domain.Snapshot{
				ID:        uuid.New(),
				ItemID:    item.ID,
				Stage:     st.stage,
				ImageURL:  st.imageURL,
				Data:      st.payload,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("save %s snapshot: %w", st.stage, err)
			}
		}

		if _, err := s.history.Append(ctx, &domain.History{
			ID:        uuid.New(),
			ItemID:    item.ID,
			Step:      domain.StepSketch,
			FieldName: "data",
			Action:    domain.ActionSave,
			Payload:   input.SketchResult,
			ChangedBy: caller.UserID,
		}); err != nil {
			return fmt.Errorf("record save: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save pipeline: %w", err)
	}

	s.log.InfoContext(ctx, "pipeline saved",
		slog.String("item_id", item.ID.String()),
		slog.String("saved_by", caller.UserID.String()),
	)
	return nil
}
