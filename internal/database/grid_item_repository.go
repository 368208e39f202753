package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screenwerk/signage/internal/domain"
)

// GridItemRepo stores the cells of a layout, keyed by (layout, index).
type GridItemRepo struct {
	pool     *pgxpool.Pool
	recorder domain.ChangeRecorder
	table    string
}

func NewGridItemRepo(pool *pgxpool.Pool, recorder domain.ChangeRecorder, table string) *GridItemRepo {
	return &GridItemRepo{pool: pool, recorder: recorder, table: table}
}

func (r *GridItemRepo) ListByLayout(ctx context.Context, layoutID string) ([]domain.GridItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM grid_items WHERE layout_id = $1 ORDER BY idx`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grid items: %w", err)
	}
	defer rows.Close()

	var items []domain.GridItem
	for rows.Next() {
		var item domain.GridItem
		if err := rows.Scan(&item); err != nil {
			return nil, fmt.Errorf("failed to scan grid item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list grid items: %w", err)
	}
	return items, nil
}

func (r *GridItemRepo) Put(ctx context.Context, item domain.GridItem) error {
	// Schedules are stored as placements; the cell document stays schedule-free.
	item.ScheduledAds = nil

	doc, err := docMap(item)
	if err != nil {
		return err
	}

	var inserted bool
	err = r.pool.QueryRow(ctx, `
		INSERT INTO grid_items (layout_id, idx, doc, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (layout_id, idx) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`, item.LayoutID, item.Index, doc).Scan(&inserted)
	if err != nil {
		return fmt.Errorf("failed to put grid item: %w", err)
	}

	record(ctx, r.recorder, r.table, writeKind(inserted), item)
	return nil
}

func (r *GridItemRepo) DeleteByLayout(ctx context.Context, layoutID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM grid_items WHERE layout_id = $1`, layoutID); err != nil {
		return fmt.Errorf("failed to delete grid items: %w", err)
	}

	record(ctx, r.recorder, r.table, domain.EventRemove, map[string]any{"layoutId": layoutID})
	return nil
}
