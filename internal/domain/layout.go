package domain

// ScheduledAd assigns an ad to a grid cell starting at a wall-clock time.
// ScheduledTime is a zero-padded 24-hour "HH:mm" string; comparisons are
// lexicographic, so schedules spanning midnight are not handled specially.
type ScheduledAd struct {
	ScheduledTime string `json:"scheduledTime"`
	AdID          string `json:"adId"`
	Ad            *Ad    `json:"ad,omitempty"`
}

// ScheduledAdPlacement is a ScheduledAd as stored: keyed by the layout and
// grid cell it belongs to.
type ScheduledAdPlacement struct {
	LayoutID  string `json:"layoutId"`
	GridIndex int    `json:"gridIndex"`
	ScheduledAd
}

// GridItem is one addressable cell of a layout. Hidden short-circuits
// rendering regardless of schedule.
type GridItem struct {
	LayoutID     string        `json:"layoutId"`
	Index        int           `json:"index"`
	Row          int           `json:"row"`
	Column       int           `json:"column"`
	RowSpan      int           `json:"rowSpan"`
	ColSpan      int           `json:"colSpan"`
	Hidden       bool          `json:"hidden"`
	ScheduledAds []ScheduledAd `json:"scheduledAds"`
}

// Layout is a grid of scheduled ads rendered by viewer screens. Viewers hold
// transient copies replaced wholesale on each relevant update; there is no
// partial merge.
type Layout struct {
	LayoutID  string     `json:"layoutId"`
	Name      string     `json:"name"`
	Rows      int        `json:"rows"`
	Columns   int        `json:"columns"`
	GridItems []GridItem `json:"gridItems"`
}
