package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screenwerk/signage/internal/domain"
)

// AdRepo stores ad records. Timestamps live in dedicated columns so an
// upsert can preserve created_at while refreshing updated_at; the values
// inside the JSONB document are overwritten from the columns on read.
type AdRepo struct {
	pool     *pgxpool.Pool
	recorder domain.ChangeRecorder
	table    string
}

func NewAdRepo(pool *pgxpool.Pool, recorder domain.ChangeRecorder, table string) *AdRepo {
	return &AdRepo{pool: pool, recorder: recorder, table: table}
}

func (r *AdRepo) Get(ctx context.Context, adID string) (*domain.Ad, error) {
	var ad domain.Ad
	err := r.pool.QueryRow(ctx, `
		SELECT doc, created_at, updated_at FROM ads WHERE ad_id = $1
	`, adID).Scan(&ad, &ad.CreatedAt, &ad.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAdNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}
	return &ad, nil
}

func (r *AdRepo) BatchGet(ctx context.Context, adIDs []string) ([]domain.Ad, error) {
	if len(adIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT doc, created_at, updated_at FROM ads WHERE ad_id = ANY($1)
	`, adIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch get ads: %w", err)
	}
	defer rows.Close()

	return scanAds(rows)
}

func (r *AdRepo) List(ctx context.Context) ([]domain.Ad, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doc, created_at, updated_at FROM ads ORDER BY created_at, ad_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	return scanAds(rows)
}

func scanAds(rows pgx.Rows) ([]domain.Ad, error) {
	var ads []domain.Ad
	for rows.Next() {
		var ad domain.Ad
		if err := rows.Scan(&ad, &ad.CreatedAt, &ad.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ad: %w", err)
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ads: %w", err)
	}
	return ads, nil
}

// Put upserts an ad. The first write sets created_at; later writes keep it
// and only move updated_at. Returns the ad with both timestamps populated.
func (r *AdRepo) Put(ctx context.Context, ad domain.Ad) (*domain.Ad, error) {
	doc, err := docMap(ad)
	if err != nil {
		return nil, err
	}

	var inserted bool
	err = r.pool.QueryRow(ctx, `
		INSERT INTO ads (ad_id, doc, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (ad_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
		RETURNING created_at, updated_at, (xmax = 0) AS inserted
	`, ad.AdID, doc).Scan(&ad.CreatedAt, &ad.UpdatedAt, &inserted)
	if err != nil {
		return nil, fmt.Errorf("failed to put ad: %w", err)
	}

	record(ctx, r.recorder, r.table, writeKind(inserted), ad)
	return &ad, nil
}

func (r *AdRepo) Delete(ctx context.Context, adID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ads WHERE ad_id = $1`, adID)
	if err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAdNotFound
	}

	record(ctx, r.recorder, r.table, domain.EventRemove, map[string]any{"adId": adID})
	return nil
}
