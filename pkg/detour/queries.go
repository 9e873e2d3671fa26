package detour

import (
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// CopyDetour returns a deep copy detached from the live record, safe to hand
// to readers outside the owner's lock.
func CopyDetour(record *Detour) *Detour {
	if record == nil {
		return nil
	}

	var copied Detour

	if err := copier.CopyWithOption(&copied, record, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Str("detour", record.PrimaryIdentifier).Msg("Failed to copy detour")
		copied = *record
	}

	return &copied
}

// CopyDetours deep-copies a query result
func CopyDetours(records []*Detour) []*Detour {
	copies := make([]*Detour, len(records))
	for i, record := range records {
		copies[i] = CopyDetour(record)
	}

	return copies
}

// GetActiveDetours returns every suspected detour, strongest evidence first
// (confidence desc, then most recently seen).
func (state *EngineState) GetActiveDetours() []*Detour {
	var detours []*Detour

	for _, detour := range state.ActiveDetours {
		if detour.Status == DetourStatusSuspected {
			detours = append(detours, detour)
		}
	}

	slices.SortFunc(detours, func(a *Detour, b *Detour) int {
		if a.ConfidenceScore != b.ConfidenceScore {
			return b.ConfidenceScore - a.ConfidenceScore
		}

		return b.LastSeenAt.Compare(a.LastSeenAt)
	})

	return detours
}

// GetDetoursForRoute returns the detours on a route, including recently
// cleared ones still inside their retention window. An empty directionID
// matches every direction.
func (state *EngineState) GetDetoursForRoute(routeID string, directionID string) []*Detour {
	var detours []*Detour

	for _, detour := range state.ActiveDetours {
		if detour.RouteID != routeID {
			continue
		}
		if directionID != "" && detour.DirectionID != directionID {
			continue
		}

		detours = append(detours, detour)
	}

	slices.SortFunc(detours, func(a *Detour, b *Detour) int {
		if a.ConfidenceScore != b.ConfidenceScore {
			return b.ConfidenceScore - a.ConfidenceScore
		}

		return b.LastSeenAt.Compare(a.LastSeenAt)
	})

	return detours
}

func (state *EngineState) HasActiveDetour(routeID string, directionID string) bool {
	for _, detour := range state.ActiveDetours {
		if detour.Status != DetourStatusSuspected {
			continue
		}
		if detour.RouteID != routeID {
			continue
		}
		if directionID != "" && detour.DirectionID != directionID {
			continue
		}

		return true
	}

	return false
}

// GetDetourHistory returns archived detours, newest first. An empty routeID
// matches every route; limit <= 0 means no limit.
func (state *EngineState) GetDetourHistory(routeID string, limit int) []*DetourHistoryEntry {
	var entries []*DetourHistoryEntry

	for i := len(state.DetourHistory) - 1; i >= 0; i-- {
		entry := state.DetourHistory[i]

		if routeID != "" && entry.Detour.RouteID != routeID {
			continue
		}

		entries = append(entries, entry)

		if limit > 0 && len(entries) >= limit {
			break
		}
	}

	return entries
}
