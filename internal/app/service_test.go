package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenwerk/signage/internal/domain"
)

type fakeLayoutRepo struct {
	layouts map[string]domain.Layout
}

func newFakeLayoutRepo() *fakeLayoutRepo {
	return &fakeLayoutRepo{layouts: make(map[string]domain.Layout)}
}

func (f *fakeLayoutRepo) Get(_ context.Context, layoutID string) (*domain.Layout, error) {
	layout, ok := f.layouts[layoutID]
	if !ok {
		return nil, domain.ErrLayoutNotFound
	}
	return &layout, nil
}

func (f *fakeLayoutRepo) List(_ context.Context) ([]domain.Layout, error) {
	var out []domain.Layout
	for _, l := range f.layouts {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLayoutRepo) Put(_ context.Context, layout domain.Layout) error {
	layout.GridItems = nil
	f.layouts[layout.LayoutID] = layout
	return nil
}

func (f *fakeLayoutRepo) Delete(_ context.Context, layoutID string) error {
	delete(f.layouts, layoutID)
	return nil
}

type fakeGridItemRepo struct {
	items map[string][]domain.GridItem
}

func newFakeGridItemRepo() *fakeGridItemRepo {
	return &fakeGridItemRepo{items: make(map[string][]domain.GridItem)}
}

func (f *fakeGridItemRepo) ListByLayout(_ context.Context, layoutID string) ([]domain.GridItem, error) {
	return f.items[layoutID], nil
}

func (f *fakeGridItemRepo) Put(_ context.Context, item domain.GridItem) error {
	item.ScheduledAds = nil
	f.items[item.LayoutID] = append(f.items[item.LayoutID], item)
	return nil
}

func (f *fakeGridItemRepo) DeleteByLayout(_ context.Context, layoutID string) error {
	delete(f.items, layoutID)
	return nil
}

type fakeScheduledAdRepo struct {
	placements map[string][]domain.ScheduledAdPlacement
}

func newFakeScheduledAdRepo() *fakeScheduledAdRepo {
	return &fakeScheduledAdRepo{placements: make(map[string][]domain.ScheduledAdPlacement)}
}

func (f *fakeScheduledAdRepo) ListByLayout(_ context.Context, layoutID string) ([]domain.ScheduledAdPlacement, error) {
	return f.placements[layoutID], nil
}

func (f *fakeScheduledAdRepo) Put(_ context.Context, placement domain.ScheduledAdPlacement) error {
	placement.Ad = nil
	f.placements[placement.LayoutID] = append(f.placements[placement.LayoutID], placement)
	return nil
}

func (f *fakeScheduledAdRepo) DeleteByLayout(_ context.Context, layoutID string) error {
	delete(f.placements, layoutID)
	return nil
}

type fakeAdRepo struct {
	ads map[string]domain.Ad
}

func newFakeAdRepo() *fakeAdRepo {
	return &fakeAdRepo{ads: make(map[string]domain.Ad)}
}

func (f *fakeAdRepo) Get(_ context.Context, adID string) (*domain.Ad, error) {
	ad, ok := f.ads[adID]
	if !ok {
		return nil, domain.ErrAdNotFound
	}
	return &ad, nil
}

func (f *fakeAdRepo) BatchGet(_ context.Context, adIDs []string) ([]domain.Ad, error) {
	var out []domain.Ad
	for _, id := range adIDs {
		if ad, ok := f.ads[id]; ok {
			out = append(out, ad)
		}
	}
	return out, nil
}

func (f *fakeAdRepo) List(_ context.Context) ([]domain.Ad, error) {
	var out []domain.Ad
	for _, ad := range f.ads {
		out = append(out, ad)
	}
	return out, nil
}

func (f *fakeAdRepo) Put(_ context.Context, ad domain.Ad) (*domain.Ad, error) {
	f.ads[ad.AdID] = ad
	return &ad, nil
}

func (f *fakeAdRepo) Delete(_ context.Context, adID string) error {
	if _, ok := f.ads[adID]; !ok {
		return domain.ErrAdNotFound
	}
	delete(f.ads, adID)
	return nil
}

type fakeMediaSigner struct{}

func (fakeMediaSigner) IssueUpload(adID, fileName string) (*domain.UploadTicket, error) {
	return &domain.UploadTicket{Key: "media/" + adID + "/" + fileName}, nil
}

func (fakeMediaSigner) URL(key string) string {
	return "https://media.test/" + key
}

type fixtures struct {
	layouts      *fakeLayoutRepo
	gridItems    *fakeGridItemRepo
	scheduledAds *fakeScheduledAdRepo
	ads          *fakeAdRepo
}

func newTestService() (*Service, fixtures) {
	f := fixtures{
		layouts:      newFakeLayoutRepo(),
		gridItems:    newFakeGridItemRepo(),
		scheduledAds: newFakeScheduledAdRepo(),
		ads:          newFakeAdRepo(),
	}
	return NewService(f.layouts, f.gridItems, f.scheduledAds, f.ads, fakeMediaSigner{}), f
}

func TestGetLayoutAssemblesGridItemsAndAds(t *testing.T) {
	svc, f := newTestService()
	ctx := context.Background()

	f.layouts.layouts["layout-1"] = domain.Layout{LayoutID: "layout-1", Name: "Lobby", Rows: 1, Columns: 2}
	f.gridItems.items["layout-1"] = []domain.GridItem{
		{LayoutID: "layout-1", Index: 1, Row: 0, Column: 1},
		{LayoutID: "layout-1", Index: 0, Row: 0, Column: 0},
	}
	f.scheduledAds.placements["layout-1"] = []domain.ScheduledAdPlacement{
		{LayoutID: "layout-1", GridIndex: 0, ScheduledAd: domain.ScheduledAd{ScheduledTime: "12:00", AdID: "ad-b"}},
		{LayoutID: "layout-1", GridIndex: 0, ScheduledAd: domain.ScheduledAd{ScheduledTime: "08:00", AdID: "ad-a"}},
		{LayoutID: "layout-1", GridIndex: 1, ScheduledAd: domain.ScheduledAd{ScheduledTime: "09:00", AdID: "ad-gone"}},
	}
	f.ads.ads["ad-a"] = domain.Ad{AdID: "ad-a", Type: domain.AdTypeText, Content: domain.AdContent{Title: "A"}}
	f.ads.ads["ad-b"] = domain.Ad{AdID: "ad-b", Type: domain.AdTypeImage, Content: domain.AdContent{Title: "B"}}

	layout, err := svc.GetLayout(ctx, "layout-1")
	require.NoError(t, err)
	require.Len(t, layout.GridItems, 2)

	// Items come back ordered by index, schedules by time.
	assert.Equal(t, 0, layout.GridItems[0].Index)
	require.Len(t, layout.GridItems[0].ScheduledAds, 2)
	assert.Equal(t, "08:00", layout.GridItems[0].ScheduledAds[0].ScheduledTime)
	require.NotNil(t, layout.GridItems[0].ScheduledAds[0].Ad)
	assert.Equal(t, "A", layout.GridItems[0].ScheduledAds[0].Ad.Content.Title)
	assert.Equal(t, "B", layout.GridItems[0].ScheduledAds[1].Ad.Content.Title)

	// A deleted ad leaves the assignment in place with no record attached.
	require.Len(t, layout.GridItems[1].ScheduledAds, 1)
	assert.Nil(t, layout.GridItems[1].ScheduledAds[0].Ad)
}

// gatedLayoutRepo blocks Get until released and counts the calls that
// actually reached the repository.
type gatedLayoutRepo struct {
	*fakeLayoutRepo
	gate  chan struct{}
	calls atomic.Int64
}

func (g *gatedLayoutRepo) Get(ctx context.Context, layoutID string) (*domain.Layout, error) {
	g.calls.Add(1)
	<-g.gate
	return g.fakeLayoutRepo.Get(ctx, layoutID)
}

func TestGetLayoutCollapsesConcurrentAssemblies(t *testing.T) {
	gated := &gatedLayoutRepo{fakeLayoutRepo: newFakeLayoutRepo(), gate: make(chan struct{})}
	gated.layouts["layout-1"] = domain.Layout{LayoutID: "layout-1", Name: "Lobby", Rows: 1, Columns: 1}

	svc := NewService(gated, newFakeGridItemRepo(), newFakeScheduledAdRepo(), newFakeAdRepo(), fakeMediaSigner{})

	const viewers = 8
	results := make(chan *domain.Layout, viewers)
	var started, wg sync.WaitGroup
	started.Add(viewers)
	wg.Add(viewers)
	for range viewers {
		go func() {
			defer wg.Done()
			started.Done()
			layout, err := svc.GetLayout(context.Background(), "layout-1")
			assert.NoError(t, err)
			results <- layout
		}()
	}

	// All callers are in flight before the repository answers.
	started.Wait()
	require.Eventually(t, func() bool { return gated.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gated.gate)
	wg.Wait()

	assert.Equal(t, int64(1), gated.calls.Load())
	close(results)
	for layout := range results {
		assert.Equal(t, "Lobby", layout.Name)
	}
}

func TestGetLayoutUnknown(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetLayout(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
}

func TestSaveLayoutReplacesWholesale(t *testing.T) {
	svc, f := newTestService()
	ctx := context.Background()

	layout := domain.Layout{
		Name: "Lobby", Rows: 1, Columns: 2,
		GridItems: []domain.GridItem{
			{Index: 0, ScheduledAds: []domain.ScheduledAd{{ScheduledTime: "08:00", AdID: "ad-a"}}},
			{Index: 1},
		},
	}

	saved, err := svc.SaveLayout(ctx, layout)
	require.NoError(t, err)
	require.NotEmpty(t, saved.LayoutID)
	assert.Len(t, f.gridItems.items[saved.LayoutID], 2)
	assert.Len(t, f.scheduledAds.placements[saved.LayoutID], 1)

	// Saving again with fewer parts replaces, never merges.
	saved.GridItems = saved.GridItems[:1]
	saved.GridItems[0].ScheduledAds = nil
	_, err = svc.SaveLayout(ctx, *saved)
	require.NoError(t, err)
	assert.Len(t, f.gridItems.items[saved.LayoutID], 1)
	assert.Empty(t, f.scheduledAds.placements[saved.LayoutID])
}

func TestSaveLayoutRejectsEmptyGrid(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SaveLayout(context.Background(), domain.Layout{Name: "bad", Rows: 0, Columns: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestSaveAdGeneratesIDAndMediaURL(t *testing.T) {
	svc, f := newTestService()

	ad, err := svc.SaveAd(context.Background(), domain.Ad{
		Type:    domain.AdTypeImage,
		Content: domain.AdContent{Title: "Sale", MediaKey: "media/x/banner.png"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ad.AdID)
	assert.Equal(t, "https://media.test/media/x/banner.png", ad.Content.MediaURL)
	assert.Contains(t, f.ads.ads, ad.AdID)
}

func TestSaveAdKeepsExplicitMediaURL(t *testing.T) {
	svc, _ := newTestService()

	ad, err := svc.SaveAd(context.Background(), domain.Ad{
		AdID:    "ad-1",
		Type:    domain.AdTypeVideo,
		Content: domain.AdContent{MediaKey: "media/x/clip.mp4", MediaURL: "https://cdn.test/clip.mp4"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/clip.mp4", ad.Content.MediaURL)
}

func TestSaveAdRejectsUnknownType(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.SaveAd(context.Background(), domain.Ad{Type: "hologram"})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestIssueUploadRequiresAdID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.IssueUpload(context.Background(), "", "banner.png")
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	ticket, err := svc.IssueUpload(context.Background(), "ad-1", "banner.png")
	require.NoError(t, err)
	assert.Equal(t, "media/ad-1/banner.png", ticket.Key)
}

func TestIssueUploadWithoutMediaStore(t *testing.T) {
	f := fixtures{
		layouts:      newFakeLayoutRepo(),
		gridItems:    newFakeGridItemRepo(),
		scheduledAds: newFakeScheduledAdRepo(),
		ads:          newFakeAdRepo(),
	}
	svc := NewService(f.layouts, f.gridItems, f.scheduledAds, f.ads, nil)

	_, err := svc.IssueUpload(context.Background(), "ad-1", "banner.png")
	assert.ErrorIs(t, err, ErrMediaNotConfigured)
}
