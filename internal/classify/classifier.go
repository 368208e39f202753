// Package classify maps change events to semantic viewer updates.
//
// Classification is total: it never fails. Tables outside the configured
// role mapping degrade to unknownUpdate rather than erroring, preserving
// liveness over strict validation.
package classify

import "github.com/screenwerk/signage/internal/domain"

// Classifier derives ClassifiedUpdates from change events using the
// table-role mapping validated at startup.
type Classifier struct {
	roles domain.TableRoles
}

// New creates a Classifier over the given role mapping.
func New(roles domain.TableRoles) *Classifier {
	return &Classifier{roles: roles}
}

// Classify maps a source table and the changed record's new image to a
// ClassifiedUpdate. The routing key is the layoutId (layout, grid item and
// scheduled-ad tables) or adId (ads table) taken from the image itself; an
// unmapped table yields unknownUpdate with a generic id/layoutId fallback.
func (c *Classifier) Classify(table string, image map[string]any) domain.ClassifiedUpdate {
	role, ok := c.roles.RoleOf(table)
	if !ok {
		return domain.ClassifiedUpdate{
			Kind:       domain.UpdateUnknown,
			RoutingKey: firstString(image, "id", "layoutId"),
			Payload:    image,
		}
	}

	var kind domain.UpdateKind
	var keyField string
	switch role {
	case domain.RoleLayouts:
		kind, keyField = domain.UpdateLayout, "layoutId"
	case domain.RoleGridItems:
		kind, keyField = domain.UpdateGridItem, "layoutId"
	case domain.RoleScheduledAds:
		kind, keyField = domain.UpdateScheduledAd, "layoutId"
	case domain.RoleAds:
		kind, keyField = domain.UpdateAd, "adId"
	}

	return domain.ClassifiedUpdate{
		Kind:       kind,
		RoutingKey: firstString(image, keyField),
		Payload:    image,
	}
}

func firstString(image map[string]any, fields ...string) string {
	for _, f := range fields {
		if v, ok := image[f].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
