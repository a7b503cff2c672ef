package catalog

import "posbridge.GO/remote"

// VisibleAt resolves per-location visibility from presence lists.
// An explicit present list wins outright (present_at_all_locations is
// ignored when it is non-empty); otherwise all-locations minus the absent
// list; otherwise the entity is visible nowhere.
func VisibleAt(p remote.PresenceData, locationExternalID string) bool {
	if len(p.PresentAtLocationIDs) > 0 {
		for _, id := range p.PresentAtLocationIDs {
			if id == locationExternalID {
				return true
			}
		}
		return false
	}
	if p.PresentAtAllLocations {
		for _, id := range p.AbsentAtLocationIDs {
			if id == locationExternalID {
				return false
			}
		}
		return true
	}
	return false
}

// VisibleLocations filters candidate location external ids down to the
// visible set.
func VisibleLocations(p remote.PresenceData, locationExternalIDs []string) []string {
	out := make([]string, 0, len(locationExternalIDs))
	for _, id := range locationExternalIDs {
		if VisibleAt(p, id) {
			out = append(out, id)
		}
	}
	return out
}
