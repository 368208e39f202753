package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screenwerk/signage/internal/domain"
)

// LayoutRepo stores layout records. Grid items and placements live in their
// own repositories; the stored layout document never contains them.
type LayoutRepo struct {
	pool     *pgxpool.Pool
	recorder domain.ChangeRecorder
	table    string
}

// NewLayoutRepo creates a repository. table is the logical table name used
// for change records; recorder may be nil to disable change capture.
func NewLayoutRepo(pool *pgxpool.Pool, recorder domain.ChangeRecorder, table string) *LayoutRepo {
	return &LayoutRepo{pool: pool, recorder: recorder, table: table}
}

func (r *LayoutRepo) Get(ctx context.Context, layoutID string) (*domain.Layout, error) {
	var layout domain.Layout
	err := r.pool.QueryRow(ctx, `SELECT doc FROM layouts WHERE layout_id = $1`, layoutID).Scan(&layout)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}
	return &layout, nil
}

func (r *LayoutRepo) List(ctx context.Context) ([]domain.Layout, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM layouts ORDER BY layout_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	defer rows.Close()

	var layouts []domain.Layout
	for rows.Next() {
		var layout domain.Layout
		if err := rows.Scan(&layout); err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		layouts = append(layouts, layout)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	return layouts, nil
}

func (r *LayoutRepo) Put(ctx context.Context, layout domain.Layout) error {
	layout.GridItems = nil

	doc, err := docMap(layout)
	if err != nil {
		return err
	}

	var inserted bool
	err = r.pool.QueryRow(ctx, `
		INSERT INTO layouts (layout_id, doc, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (layout_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`, layout.LayoutID, doc).Scan(&inserted)
	if err != nil {
		return fmt.Errorf("failed to put layout: %w", err)
	}

	record(ctx, r.recorder, r.table, writeKind(inserted), layout)
	return nil
}

func (r *LayoutRepo) Delete(ctx context.Context, layoutID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM layouts WHERE layout_id = $1`, layoutID)
	if err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLayoutNotFound
	}

	record(ctx, r.recorder, r.table, domain.EventRemove, map[string]any{"layoutId": layoutID})
	return nil
}
