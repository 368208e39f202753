package domain

import (
	"context"
	"time"
)

// UploadTicket is a signed, time-limited upload grant plus the public URL
// the uploaded object will have.
type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	MediaURL  string    `json:"src"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MediaSigner issues upload tickets and resolves public media URLs.
type MediaSigner interface {
	IssueUpload(adID, fileName string) (*UploadTicket, error)
	URL(key string) string
}

// AppService is the application layer contract; handlers route all
// operations through here.
type AppService interface {
	GetLayout(ctx context.Context, layoutID string) (*Layout, error)
	ListLayouts(ctx context.Context) ([]Layout, error)
	SaveLayout(ctx context.Context, layout Layout) (*Layout, error)
	ListAds(ctx context.Context) ([]Ad, error)
	SaveAd(ctx context.Context, ad Ad) (*Ad, error)
	BatchGetAds(ctx context.Context, adIDs []string) ([]Ad, error)
	DeleteAd(ctx context.Context, adID string) error
	IssueUpload(ctx context.Context, adID, fileName string) (*UploadTicket, error)
}
