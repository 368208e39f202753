package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/screenwerk/signage/internal/domain"
)

// record forwards a write to the change recorder. Recording is best effort:
// a failure here must not fail the write that already committed.
func record(ctx context.Context, rec domain.ChangeRecorder, table string, kind domain.EventKind, v any) {
	if rec == nil {
		return
	}

	image, err := docMap(v)
	if err != nil {
		slog.Error("failed to build change image", "table", table, "error", err)
		return
	}

	if err := rec.Record(ctx, table, kind, image); err != nil {
		slog.Error("failed to record change", "table", table, "kind", kind, "error", err)
	}
}

// docMap round-trips a record through JSON into the generic map form used
// for both JSONB storage and change images.
func docMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return m, nil
}

// writeKind maps the upsert's inserted flag to the matching event kind.
func writeKind(inserted bool) domain.EventKind {
	if inserted {
		return domain.EventInsert
	}
	return domain.EventModify
}
