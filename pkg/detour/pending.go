package detour

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/geo"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/util"
)

// finalizeExcursion runs when a vehicle rejoins its route. Short or brief
// excursions are discarded as GPS jitter; everything else is simplified and
// matched against the pending paths for the route & direction. The first
// overlapping pending path wins and the pair is promoted into a detour; with
// no match the path is enqueued to wait for a second vehicle.
func (e *Engine) finalizeExcursion(state *EngineState, record *VehicleTrackingRecord, config RouteDetourConfig, now time.Time) *Detour {
	if len(record.OffRouteBreadcrumbs) < config.MinOffRouteBreadcrumbs {
		return nil
	}

	if record.OffRouteStartTime != nil {
		lastCrumb := record.OffRouteBreadcrumbs[len(record.OffRouteBreadcrumbs)-1]
		if lastCrumb.Timestamp.Sub(*record.OffRouteStartTime) < config.MinOffRouteDuration {
			return nil
		}
	}

	path := make([]transit.Location, len(record.OffRouteBreadcrumbs))
	for i, crumb := range record.OffRouteBreadcrumbs {
		path[i] = crumb.Location
	}
	path = geo.SimplifyPath(path, e.Config.SimplifyMinDistanceMeters)

	routeKey := RouteKey(record.RouteID, record.DirectionID)

	// Drop pending paths nobody corroborated in time
	pendingPaths := state.PendingPaths[routeKey]
	util.InPlaceFilter(&pendingPaths, func(pending *PendingPath) bool {
		return now.Sub(pending.Timestamp) <= config.PendingPathExpiry
	})
	state.PendingPaths[routeKey] = pendingPaths

	ownIndex := -1
	for i, pending := range state.PendingPaths[routeKey] {
		if pending.VehicleID == record.VehicleID {
			ownIndex = i
			continue
		}

		if geo.PathsOverlap(path, pending.Path, config.CorridorWidthMeters, config.PathOverlapPercentage) {
			state.PendingPaths[routeKey] = append(
				state.PendingPaths[routeKey][:i],
				state.PendingPaths[routeKey][i+1:]...)

			log.Info().
				Str("vehicle", record.VehicleID).
				Str("corroborates", pending.VehicleID).
				Str("routekey", routeKey).
				Msg("Off-route paths corroborated")

			return e.createOrUpdateDetour(state, pending, record, path, config, now)
		}
	}

	// A repeat excursion by the same vehicle refreshes its entry rather than
	// stacking a second one
	if ownIndex >= 0 {
		existing := state.PendingPaths[routeKey][ownIndex]
		existing.Path = path
		existing.Timestamp = now

		return nil
	}

	state.PendingPaths[routeKey] = append(state.PendingPaths[routeKey], &PendingPath{
		VehicleID: record.VehicleID,
		Path:      path,
		Timestamp: now,

		RouteID:     record.RouteID,
		DirectionID: record.DirectionID,
	})

	return nil
}
