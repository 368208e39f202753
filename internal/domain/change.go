package domain

// EventKind is the row-level operation a change record describes.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventModify EventKind = "MODIFY"
	EventRemove EventKind = "REMOVE"
)

// ChangeRecord is one normalized entry polled from a table's change feed.
// NewImage is the full record after the change (whole-object, never a diff).
type ChangeRecord struct {
	Kind     EventKind
	NewImage map[string]any
}

// ChangeEvent is a ChangeRecord tagged with the table it came from. Produced
// per polling cycle, consumed immediately, never persisted.
type ChangeEvent struct {
	Table    string
	Kind     EventKind
	NewImage map[string]any
}

// UpdateKind is the semantic update type pushed to viewer sessions.
type UpdateKind string

const (
	UpdateLayout      UpdateKind = "layoutUpdate"
	UpdateGridItem    UpdateKind = "gridItemUpdate"
	UpdateScheduledAd UpdateKind = "scheduledAdUpdate"
	UpdateAd          UpdateKind = "adUpdate"
	UpdateUnknown     UpdateKind = "unknownUpdate"
)

// ClassifiedUpdate is a change event mapped to its semantic kind and routing
// key. RoutingKey always equals the layoutId (layout/gridItem/scheduledAd
// kinds) or adId (ad kind) carried in the payload itself.
type ClassifiedUpdate struct {
	Kind       UpdateKind
	RoutingKey string
	Payload    map[string]any
}

// TableRole names the semantic role a watched table plays.
type TableRole string

const (
	RoleLayouts      TableRole = "layouts"
	RoleGridItems    TableRole = "gridItems"
	RoleScheduledAds TableRole = "scheduledAds"
	RoleAds          TableRole = "ads"
)

// TableRoles is the explicit table-role mapping supplied at startup. An
// unmapped table reaching classification degrades to UpdateUnknown; an empty
// or duplicated name here is a configuration error caught by Validate.
type TableRoles struct {
	Layouts      string
	GridItems    string
	ScheduledAds string
	Ads          string
}

// All returns the configured table names in a fixed order.
func (t TableRoles) All() []string {
	return []string{t.Layouts, t.GridItems, t.ScheduledAds, t.Ads}
}

// RoleOf resolves a table name to its role.
func (t TableRoles) RoleOf(table string) (TableRole, bool) {
	switch table {
	case t.Layouts:
		return RoleLayouts, true
	case t.GridItems:
		return RoleGridItems, true
	case t.ScheduledAds:
		return RoleScheduledAds, true
	case t.Ads:
		return RoleAds, true
	}
	return "", false
}
