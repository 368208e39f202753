package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/screenwerk/signage/internal/domain"
)

var testRoles = domain.TableRoles{
	Layouts:      "signage-layouts",
	GridItems:    "signage-grid-items",
	ScheduledAds: "signage-scheduled-ads",
	Ads:          "signage-ads",
}

func TestClassify_KindFollowsTableRole(t *testing.T) {
	c := New(testRoles)

	tests := []struct {
		table   string
		image   map[string]any
		kind    domain.UpdateKind
		routing string
	}{
		{"signage-layouts", map[string]any{"layoutId": "L1", "rows": 2.0}, domain.UpdateLayout, "L1"},
		{"signage-grid-items", map[string]any{"layoutId": "L2", "index": 0.0}, domain.UpdateGridItem, "L2"},
		{"signage-scheduled-ads", map[string]any{"layoutId": "L3", "adId": "A9"}, domain.UpdateScheduledAd, "L3"},
		{"signage-ads", map[string]any{"adId": "A1", "type": "image"}, domain.UpdateAd, "A1"},
	}

	for _, tc := range tests {
		got := c.Classify(tc.table, tc.image)
		assert.Equal(t, tc.kind, got.Kind, tc.table)
		assert.Equal(t, tc.routing, got.RoutingKey, tc.table)
		assert.Equal(t, tc.image, got.Payload, tc.table)
	}
}

func TestClassify_SameTableAlwaysSameKind(t *testing.T) {
	c := New(testRoles)
	for range 3 {
		got := c.Classify("signage-ads", map[string]any{"adId": "A1"})
		assert.Equal(t, domain.UpdateAd, got.Kind)
	}
}

func TestClassify_UnknownTableDegrades(t *testing.T) {
	c := New(testRoles)

	got := c.Classify("legacy-table", map[string]any{"id": "X1"})
	assert.Equal(t, domain.UpdateUnknown, got.Kind)
	assert.Equal(t, "X1", got.RoutingKey)

	got = c.Classify("legacy-table", map[string]any{"layoutId": "L7"})
	assert.Equal(t, "L7", got.RoutingKey)

	got = c.Classify("legacy-table", map[string]any{"something": "else"})
	assert.Equal(t, domain.UpdateUnknown, got.Kind)
	assert.Empty(t, got.RoutingKey)
}

func TestClassify_MissingKeyFieldLeavesRoutingEmpty(t *testing.T) {
	c := New(testRoles)
	got := c.Classify("signage-layouts", map[string]any{"rows": 3.0})
	assert.Equal(t, domain.UpdateLayout, got.Kind)
	assert.Empty(t, got.RoutingKey)
}
