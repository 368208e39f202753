package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screenwerk/signage/internal/domain"
)

// ScheduledAdRepo stores ad-to-cell assignments. The full ad record is never
// stored here; placements carry only the ad ID and join at read time.
type ScheduledAdRepo struct {
	pool     *pgxpool.Pool
	recorder domain.ChangeRecorder
	table    string
}

func NewScheduledAdRepo(pool *pgxpool.Pool, recorder domain.ChangeRecorder, table string) *ScheduledAdRepo {
	return &ScheduledAdRepo{pool: pool, recorder: recorder, table: table}
}

func (r *ScheduledAdRepo) ListByLayout(ctx context.Context, layoutID string) ([]domain.ScheduledAdPlacement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doc FROM scheduled_ads
		WHERE layout_id = $1
		ORDER BY grid_index, scheduled_time, ad_id
	`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled ads: %w", err)
	}
	defer rows.Close()

	var placements []domain.ScheduledAdPlacement
	for rows.Next() {
		var placement domain.ScheduledAdPlacement
		if err := rows.Scan(&placement); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled ad: %w", err)
		}
		placements = append(placements, placement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scheduled ads: %w", err)
	}
	return placements, nil
}

func (r *ScheduledAdRepo) Put(ctx context.Context, placement domain.ScheduledAdPlacement) error {
	placement.Ad = nil

	doc, err := docMap(placement)
	if err != nil {
		return err
	}

	var inserted bool
	err = r.pool.QueryRow(ctx, `
		INSERT INTO scheduled_ads (layout_id, grid_index, ad_id, scheduled_time, doc, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (layout_id, grid_index, ad_id, scheduled_time) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`, placement.LayoutID, placement.GridIndex, placement.AdID, placement.ScheduledTime, doc).Scan(&inserted)
	if err != nil {
		return fmt.Errorf("failed to put scheduled ad: %w", err)
	}

	record(ctx, r.recorder, r.table, writeKind(inserted), placement)
	return nil
}

func (r *ScheduledAdRepo) DeleteByLayout(ctx context.Context, layoutID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM scheduled_ads WHERE layout_id = $1`, layoutID); err != nil {
		return fmt.Errorf("failed to delete scheduled ads: %w", err)
	}

	record(ctx, r.recorder, r.table, domain.EventRemove, map[string]any{"layoutId": layoutID})
	return nil
}
