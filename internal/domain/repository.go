package domain

import "context"

// LayoutRepository stores layout records (grid items live separately).
type LayoutRepository interface {
	Get(ctx context.Context, layoutID string) (*Layout, error)
	List(ctx context.Context) ([]Layout, error)
	Put(ctx context.Context, layout Layout) error
	Delete(ctx context.Context, layoutID string) error
}

// GridItemRepository stores the cells of a layout.
type GridItemRepository interface {
	ListByLayout(ctx context.Context, layoutID string) ([]GridItem, error)
	Put(ctx context.Context, item GridItem) error
	DeleteByLayout(ctx context.Context, layoutID string) error
}

// ScheduledAdRepository stores ad-to-cell assignments.
type ScheduledAdRepository interface {
	ListByLayout(ctx context.Context, layoutID string) ([]ScheduledAdPlacement, error)
	Put(ctx context.Context, placement ScheduledAdPlacement) error
	DeleteByLayout(ctx context.Context, layoutID string) error
}

// AdRepository stores ad records. Put is an upsert that preserves the
// original CreatedAt (first-write-wins) while refreshing UpdatedAt.
type AdRepository interface {
	Get(ctx context.Context, adID string) (*Ad, error)
	BatchGet(ctx context.Context, adIDs []string) ([]Ad, error)
	List(ctx context.Context) ([]Ad, error)
	Put(ctx context.Context, ad Ad) (*Ad, error)
	Delete(ctx context.Context, adID string) error
}
