package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/screenwerk/signage/internal/domain"
)

// ErrMediaNotConfigured is returned by IssueUpload when the deployment has
// no media base URL and signing key set.
var ErrMediaNotConfigured = errors.New("media uploads not configured")

// Service implements domain.AppService on top of the repositories and the
// media signer.
type Service struct {
	layouts      domain.LayoutRepository
	gridItems    domain.GridItemRepository
	scheduledAds domain.ScheduledAdRepository
	ads          domain.AdRepository
	media        domain.MediaSigner

	assemblyGroup singleflight.Group
}

func NewService(
	layouts domain.LayoutRepository,
	gridItems domain.GridItemRepository,
	scheduledAds domain.ScheduledAdRepository,
	ads domain.AdRepository,
	media domain.MediaSigner,
) *Service {
	return &Service{
		layouts:      layouts,
		gridItems:    gridItems,
		scheduledAds: scheduledAds,
		ads:          ads,
		media:        media,
	}
}

// GetLayout loads a layout and assembles it: grid items, their scheduled
// ads, and the full ad record joined onto each assignment. An assignment
// whose ad no longer exists keeps a nil Ad.
// Uses singleflight to collapse concurrent assemblies of the same layout;
// every viewer on a layout re-fetches it at once after an update.
func (s *Service) GetLayout(ctx context.Context, layoutID string) (*domain.Layout, error) {
	v, err, _ := s.assemblyGroup.Do(layoutID, func() (any, error) {
		return s.assembleLayout(ctx, layoutID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Layout), nil
}

func (s *Service) assembleLayout(ctx context.Context, layoutID string) (*domain.Layout, error) {
	layout, err := s.layouts.Get(ctx, layoutID)
	if err != nil {
		return nil, err
	}

	items, err := s.gridItems.ListByLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}

	placements, err := s.scheduledAds.ListByLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}

	adsByID, err := s.adsForPlacements(ctx, placements)
	if err != nil {
		return nil, err
	}

	byCell := make(map[int][]domain.ScheduledAd)
	for _, placement := range placements {
		scheduled := placement.ScheduledAd
		if ad, ok := adsByID[scheduled.AdID]; ok {
			scheduled.Ad = &ad
		}
		byCell[placement.GridIndex] = append(byCell[placement.GridIndex], scheduled)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })
	for i := range items {
		scheduled := byCell[items[i].Index]
		sort.Slice(scheduled, func(a, b int) bool { return scheduled[a].ScheduledTime < scheduled[b].ScheduledTime })
		items[i].ScheduledAds = scheduled
	}

	layout.GridItems = items
	return layout, nil
}

func (s *Service) adsForPlacements(ctx context.Context, placements []domain.ScheduledAdPlacement) (map[string]domain.Ad, error) {
	seen := make(map[string]bool)
	var adIDs []string
	for _, p := range placements {
		if !seen[p.AdID] {
			seen[p.AdID] = true
			adIDs = append(adIDs, p.AdID)
		}
	}

	ads, err := s.ads.BatchGet(ctx, adIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Ad, len(ads))
	for _, ad := range ads {
		byID[ad.AdID] = ad
	}
	return byID, nil
}

func (s *Service) ListLayouts(ctx context.Context) ([]domain.Layout, error) {
	return s.layouts.List(ctx)
}

// SaveLayout persists the layout document and replaces its grid items and
// ad assignments wholesale. A missing layout id is generated.
func (s *Service) SaveLayout(ctx context.Context, layout domain.Layout) (*domain.Layout, error) {
	if layout.LayoutID == "" {
		layout.LayoutID = uuid.NewString()
	}
	if layout.Rows <= 0 || layout.Columns <= 0 {
		return nil, fmt.Errorf("%w: layout needs positive rows and columns", domain.ErrInvalidRecord)
	}

	if err := s.layouts.Put(ctx, layout); err != nil {
		return nil, err
	}

	if err := s.gridItems.DeleteByLayout(ctx, layout.LayoutID); err != nil {
		return nil, err
	}
	if err := s.scheduledAds.DeleteByLayout(ctx, layout.LayoutID); err != nil {
		return nil, err
	}

	for i := range layout.GridItems {
		item := layout.GridItems[i]
		item.LayoutID = layout.LayoutID

		if err := s.gridItems.Put(ctx, item); err != nil {
			return nil, err
		}

		for _, scheduled := range item.ScheduledAds {
			placement := domain.ScheduledAdPlacement{
				LayoutID:    layout.LayoutID,
				GridIndex:   item.Index,
				ScheduledAd: scheduled,
			}
			if err := s.scheduledAds.Put(ctx, placement); err != nil {
				return nil, err
			}
		}
	}

	return &layout, nil
}

func (s *Service) ListAds(ctx context.Context) ([]domain.Ad, error) {
	return s.ads.List(ctx)
}

// SaveAd upserts an ad, generating an id when missing and deriving the
// public media URL from the media key when the caller did not set one.
func (s *Service) SaveAd(ctx context.Context, ad domain.Ad) (*domain.Ad, error) {
	if ad.AdID == "" {
		ad.AdID = uuid.NewString()
	}
	if !domain.ValidAdType(ad.Type) {
		return nil, fmt.Errorf("%w: unknown ad type %q", domain.ErrInvalidRecord, ad.Type)
	}
	if ad.Content.MediaKey != "" && ad.Content.MediaURL == "" && s.media != nil {
		ad.Content.MediaURL = s.media.URL(ad.Content.MediaKey)
	}

	return s.ads.Put(ctx, ad)
}

func (s *Service) BatchGetAds(ctx context.Context, adIDs []string) ([]domain.Ad, error) {
	return s.ads.BatchGet(ctx, adIDs)
}

func (s *Service) DeleteAd(ctx context.Context, adID string) error {
	return s.ads.Delete(ctx, adID)
}

func (s *Service) IssueUpload(_ context.Context, adID, fileName string) (*domain.UploadTicket, error) {
	if s.media == nil {
		return nil, ErrMediaNotConfigured
	}
	if adID == "" {
		return nil, fmt.Errorf("%w: upload needs an ad id", domain.ErrInvalidRecord)
	}
	return s.media.IssueUpload(adID, fileName)
}
