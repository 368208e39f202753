package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenwerk/signage/internal/broadcast"
	"github.com/screenwerk/signage/internal/domain"
)

func testLayout() *domain.Layout {
	return &domain.Layout{
		LayoutID: "layout-1",
		Name:     "Lobby",
		Rows:     1,
		Columns:  2,
		GridItems: []domain.GridItem{
			{
				LayoutID: "layout-1", Index: 0,
				ScheduledAds: []domain.ScheduledAd{
					{ScheduledTime: "08:00", AdID: "ad-a", Ad: &domain.Ad{AdID: "ad-a", Content: domain.AdContent{Title: "A"}}},
					{ScheduledTime: "12:00", AdID: "ad-b", Ad: &domain.Ad{AdID: "ad-b", Content: domain.AdContent{Title: "B"}}},
				},
			},
			{LayoutID: "layout-1", Index: 1, Hidden: true,
				ScheduledAds: []domain.ScheduledAd{{ScheduledTime: "08:00", AdID: "ad-a"}}},
		},
	}
}

func TestApplyLayoutUpdateKeepsGridItems(t *testing.T) {
	screen := NewScreen()
	screen.SetLayout(testLayout())

	changed := screen.Apply(broadcast.Envelope{
		Type: domain.UpdateLayout,
		Data: map[string]any{"layoutId": "layout-1", "name": "Lobby v2", "rows": float64(2), "columns": float64(2)},
	})
	require.True(t, changed)

	layout := screen.Layout()
	assert.Equal(t, "Lobby v2", layout.Name)
	assert.Equal(t, 2, layout.Rows)
	assert.Len(t, layout.GridItems, 2)
}

func TestApplyIgnoresOtherLayouts(t *testing.T) {
	screen := NewScreen()
	screen.SetLayout(testLayout())

	changed := screen.Apply(broadcast.Envelope{
		Type: domain.UpdateLayout,
		Data: map[string]any{"layoutId": "layout-9", "name": "Elsewhere"},
	})
	assert.False(t, changed)
	assert.Equal(t, "Lobby", screen.Layout().Name)
}

func TestApplyGridItemUpdatePreservesSchedule(t *testing.T) {
	screen := NewScreen()
	screen.SetLayout(testLayout())

	changed := screen.Apply(broadcast.Envelope{
		Type: domain.UpdateGridItem,
		Data: map[string]any{"layoutId": "layout-1", "index": float64(1), "hidden": false},
	})
	require.True(t, changed)

	item := screen.Layout().GridItems[1]
	assert.False(t, item.Hidden)
	require.Len(t, item.ScheduledAds, 1)
	assert.Equal(t, "ad-a", item.ScheduledAds[0].AdID)
}

func TestApplyScheduledAdUpdateAppendsAndSorts(t *testing.T) {
	screen := NewScreen()
	screen.SetLayout(testLayout())

	changed := screen.Apply(broadcast.Envelope{
		Type: domain.UpdateScheduledAd,
		Data: map[string]any{"layoutId": "layout-1", "gridIndex": float64(0), "scheduledTime": "10:00", "adId": "ad-c"},
	})
	require.True(t, changed)

	scheduled := screen.Layout().GridItems[0].ScheduledAds
	require.Len(t, scheduled, 3)
	assert.Equal(t, []string{"ad-a", "ad-c", "ad-b"}, []string{scheduled[0].AdID, scheduled[1].AdID, scheduled[2].AdID})
}

func TestApplyAdUpdateReplacesEverywhere(t *testing.T) {
	screen := NewScreen()
	screen.SetLayout(testLayout())

	changed := screen.Apply(broadcast.Envelope{
		Type: domain.UpdateAd,
		Data: map[string]any{"adId": "ad-a", "type": "text", "content": map[string]any{"title": "A v2"}},
	})
	require.True(t, changed)

	layout := screen.Layout()
	require.NotNil(t, layout.GridItems[0].ScheduledAds[0].Ad)
	assert.Equal(t, "A v2", layout.GridItems[0].ScheduledAds[0].Ad.Content.Title)
	require.NotNil(t, layout.GridItems[1].ScheduledAds[0].Ad)
	assert.Equal(t, "A v2", layout.GridItems[1].ScheduledAds[0].Ad.Content.Title)
}

func TestResolveSkipsHiddenCells(t *testing.T) {
	screen := NewScreen()
	screen.SetLayout(testLayout())

	cells := screen.Resolve("10:30")
	require.Len(t, cells, 2)

	require.NotNil(t, cells[0].Active)
	assert.Equal(t, "ad-a", cells[0].Active.AdID)

	assert.True(t, cells[1].Hidden)
	assert.Nil(t, cells[1].Active)
}

func TestResolveWithoutLayout(t *testing.T) {
	assert.Nil(t, NewScreen().Resolve("10:30"))
}

func TestApplyBeforeLayout(t *testing.T) {
	changed := NewScreen().Apply(broadcast.Envelope{
		Type: domain.UpdateLayout,
		Data: map[string]any{"layoutId": "layout-1"},
	})
	assert.False(t, changed)
}
