package detour

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/util"
)

const (
	ArchiveReasonExpired             = "expired"
	ArchiveReasonExpiredMaxRetention = "expired_max_retention"
	ArchiveReasonCleared             = "cleared"
)

// CleanupExpired is the periodic sweep. Suspected-tier detours that nobody
// has seen in a while are archived, anything beyond the absolute retention
// cap goes regardless of tier, cleared detours linger briefly so consumers
// can show "detour cleared", and stale pending paths & vehicle records are
// pruned.
func (e *Engine) CleanupExpired(state *EngineState) {
	now := time.Now()

	for id, detour := range state.ActiveDetours {
		config := e.ResolveRouteConfig(detour.RouteID)

		switch {
		case now.Sub(detour.FirstDetectedAt) > e.Config.MaxRetention:
			e.archiveDetour(state, id, ArchiveReasonExpiredMaxRetention, now)

		case detour.Status == DetourStatusCleared &&
			detour.ClearedAt != nil &&
			now.Sub(*detour.ClearedAt) > e.Config.ClearedRetention:
			e.archiveDetour(state, id, ArchiveReasonCleared, now)

		case detour.Status == DetourStatusSuspected &&
			detour.ConfidenceLevel == ConfidenceLevelSuspected &&
			now.Sub(detour.LastSeenAt) > config.SuspectedDetourExpiry:
			e.archiveDetour(state, id, ArchiveReasonExpired, now)
		}
	}

	for routeKey, paths := range state.PendingPaths {
		util.InPlaceFilter(&paths, func(pending *PendingPath) bool {
			config := e.ResolveRouteConfig(pending.RouteID)
			return now.Sub(pending.Timestamp) <= config.PendingPathExpiry
		})

		if len(paths) == 0 {
			delete(state.PendingPaths, routeKey)
		} else {
			state.PendingPaths[routeKey] = paths
		}
	}

	for vehicleID, record := range state.VehicleTracking {
		config := e.ResolveRouteConfig(record.RouteID)

		if now.Sub(record.LastUpdateTime) > config.PendingPathExpiry {
			delete(state.VehicleTracking, vehicleID)
		}
	}
}

// archiveDetour deep-copies the detour into the bounded history list and
// removes it from the active set.
func (e *Engine) archiveDetour(state *EngineState, id string, reason string, now time.Time) {
	detour := state.ActiveDetours[id]
	if detour == nil {
		return
	}

	state.DetourHistory = append(state.DetourHistory, &DetourHistoryEntry{
		Detour: *CopyDetour(detour),

		ArchivedAt:    now,
		ArchiveReason: reason,
	})

	if over := len(state.DetourHistory) - e.Config.HistoryLimit; over > 0 {
		state.DetourHistory = state.DetourHistory[over:]
	}

	delete(state.ActiveDetours, id)

	log.Info().
		Str("detour", id).
		Str("reason", reason).
		Msg("Archived detour")
}
