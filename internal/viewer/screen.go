package viewer

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/screenwerk/signage/internal/broadcast"
	"github.com/screenwerk/signage/internal/domain"
	"github.com/screenwerk/signage/internal/schedule"
)

// Cell is one grid cell's resolved programme at a point in time.
type Cell struct {
	Index  int
	Hidden bool
	Active *domain.ScheduledAd
}

// Screen holds the layout a viewer is displaying and folds incoming
// updates into it. Each update replaces the matching record wholesale;
// fields absent from the record class (a grid item carries no schedule,
// a layout carries no grid items) keep their current value.
type Screen struct {
	mu     sync.Mutex
	layout *domain.Layout
}

func NewScreen() *Screen {
	return &Screen{}
}

// SetLayout installs a freshly fetched layout, replacing everything.
func (s *Screen) SetLayout(layout *domain.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = layout
}

// Layout returns the current layout (nil before SetLayout).
func (s *Screen) Layout() *domain.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Apply folds one update into the screen state. Returns true when the
// update touched the displayed layout.
func (s *Screen) Apply(env broadcast.Envelope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout == nil {
		return false
	}

	switch env.Type {
	case domain.UpdateLayout:
		return s.applyLayout(env.Data)
	case domain.UpdateGridItem:
		return s.applyGridItem(env.Data)
	case domain.UpdateScheduledAd:
		return s.applyScheduledAd(env.Data)
	case domain.UpdateAd:
		return s.applyAd(env.Data)
	}
	return false
}

func (s *Screen) applyLayout(data map[string]any) bool {
	var upd domain.Layout
	if !decode(data, &upd) || upd.LayoutID != s.layout.LayoutID {
		return false
	}

	s.layout.Name = upd.Name
	s.layout.Rows = upd.Rows
	s.layout.Columns = upd.Columns
	if len(upd.GridItems) > 0 {
		s.layout.GridItems = upd.GridItems
	}
	return true
}

func (s *Screen) applyGridItem(data map[string]any) bool {
	var upd domain.GridItem
	if !decode(data, &upd) || upd.LayoutID != s.layout.LayoutID {
		return false
	}

	for i := range s.layout.GridItems {
		if s.layout.GridItems[i].Index != upd.Index {
			continue
		}
		if len(upd.ScheduledAds) == 0 {
			upd.ScheduledAds = s.layout.GridItems[i].ScheduledAds
		}
		s.layout.GridItems[i] = upd
		return true
	}

	s.layout.GridItems = append(s.layout.GridItems, upd)
	sort.Slice(s.layout.GridItems, func(i, j int) bool {
		return s.layout.GridItems[i].Index < s.layout.GridItems[j].Index
	})
	return true
}

func (s *Screen) applyScheduledAd(data map[string]any) bool {
	var upd domain.ScheduledAdPlacement
	if !decode(data, &upd) || upd.LayoutID != s.layout.LayoutID {
		return false
	}

	for i := range s.layout.GridItems {
		item := &s.layout.GridItems[i]
		if item.Index != upd.GridIndex {
			continue
		}

		for j := range item.ScheduledAds {
			existing := &item.ScheduledAds[j]
			if existing.AdID == upd.AdID && existing.ScheduledTime == upd.ScheduledTime {
				ad := existing.Ad
				*existing = upd.ScheduledAd
				if existing.Ad == nil {
					existing.Ad = ad
				}
				return true
			}
		}

		item.ScheduledAds = append(item.ScheduledAds, upd.ScheduledAd)
		sort.Slice(item.ScheduledAds, func(a, b int) bool {
			return item.ScheduledAds[a].ScheduledTime < item.ScheduledAds[b].ScheduledTime
		})
		return true
	}
	return false
}

func (s *Screen) applyAd(data map[string]any) bool {
	var upd domain.Ad
	if !decode(data, &upd) || upd.AdID == "" {
		return false
	}

	changed := false
	for i := range s.layout.GridItems {
		for j := range s.layout.GridItems[i].ScheduledAds {
			scheduled := &s.layout.GridItems[i].ScheduledAds[j]
			if scheduled.AdID == upd.AdID {
				ad := upd
				scheduled.Ad = &ad
				changed = true
			}
		}
	}
	return changed
}

// Resolve computes the active programme per cell. Hidden cells resolve to
// nothing regardless of schedule.
func (s *Screen) Resolve(now string) []Cell {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layout == nil {
		return nil
	}

	cells := make([]Cell, 0, len(s.layout.GridItems))
	for _, item := range s.layout.GridItems {
		cell := Cell{Index: item.Index, Hidden: item.Hidden}
		if !item.Hidden {
			cell.Active = schedule.Resolve(item.ScheduledAds, now)
		}
		cells = append(cells, cell)
	}
	return cells
}

func decode(data map[string]any, out any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
