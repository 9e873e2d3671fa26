package detour

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/geo"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// createOrUpdateDetour promotes a corroborated pair of off-route paths into a
// detour record. If a suspected detour on the same route & direction already
// covers the new path it is updated in place rather than duplicated.
func (e *Engine) createOrUpdateDetour(state *EngineState, pending *PendingPath, record *VehicleTrackingRecord, path []transit.Location, config RouteDetourConfig, now time.Time) *Detour {
	routeKey := RouteKey(record.RouteID, record.DirectionID)

	for _, existing := range state.ActiveDetours {
		if existing.RouteKey != routeKey || existing.Status != DetourStatusSuspected {
			continue
		}

		if geo.PathsOverlap(path, existing.Polyline, config.CorridorWidthMeters, config.PathOverlapPercentage) {
			recordSighting(&existing.ConfirmedByVehicles, pending.VehicleID, pending.Timestamp, config.PendingPathExpiry)
			recordSighting(&existing.ConfirmedByVehicles, record.VehicleID, now, config.PendingPathExpiry)

			existing.LastSeenAt = now
			existing.EvidenceCount = len(uniqueVehicleIDs(existing.ConfirmedByVehicles))

			e.updateDetourConfidence(existing, now)

			log.Info().
				Str("detour", existing.PrimaryIdentifier).
				Int("evidence", existing.EvidenceCount).
				Int("confidence", existing.ConfidenceScore).
				Msg("Detour corroborated by another vehicle")

			return existing
		}
	}

	// The longer of the two corroborating paths describes the corridor best
	polyline := path
	if len(pending.Path) > len(polyline) {
		polyline = pending.Path
	}

	state.DetourIDCounter += 1

	detour := &Detour{
		PrimaryIdentifier: fmt.Sprintf("detour_%d_%d", now.UnixMilli(), state.DetourIDCounter),

		RouteID:     record.RouteID,
		DirectionID: record.DirectionID,
		RouteKey:    routeKey,

		Polyline: polyline,

		ConfirmedByVehicles: []VehicleSighting{
			{VehicleID: pending.VehicleID, Timestamp: pending.Timestamp},
			{VehicleID: record.VehicleID, Timestamp: now},
		},

		FirstDetectedAt: pending.Timestamp,
		LastSeenAt:      now,

		Status: DetourStatusSuspected,

		OfficialAlert:    AlertMatch{Matched: false},
		AlertCorrelation: AlertCorrelationNone,

		AffectedStops:    []EnrichedStop{},
		ClearingEvidence: []VehicleSighting{},
	}

	if centroid := geo.PathCentroid(polyline); centroid != nil {
		detour.Centroid = *centroid
	}

	detour.EvidenceCount = len(uniqueVehicleIDs(detour.ConfirmedByVehicles))
	e.updateDetourConfidence(detour, now)

	state.ActiveDetours[detour.PrimaryIdentifier] = detour

	log.Info().
		Str("detour", detour.PrimaryIdentifier).
		Str("routekey", routeKey).
		Int("confidence", detour.ConfidenceScore).
		Msg("New suspected detour")

	return detour
}

// updateDetourConfidence recomputes the confidence score & level after any
// mutation. Vehicle count sets a tiered floor, recency and an official alert
// match add small bonuses on top.
func (e *Engine) updateDetourConfidence(detour *Detour, now time.Time) {
	uniqueVehicles := len(uniqueVehicleIDs(detour.ConfirmedByVehicles))

	var score int
	switch {
	case uniqueVehicles >= 5:
		score = 90
	case uniqueVehicles == 4:
		score = 82
	case uniqueVehicles == 3:
		score = 72
	case uniqueVehicles == 2:
		score = 60
	case uniqueVehicles == 1:
		score = 45
	}

	sinceSeen := now.Sub(detour.LastSeenAt)
	if sinceSeen <= 5*time.Minute {
		score += 5
	} else if sinceSeen <= 15*time.Minute {
		score += 2
	}

	if detour.OfficialAlert.Matched {
		score += 8
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	detour.ConfidenceScore = score

	switch {
	case score >= e.Config.HighConfidenceThreshold:
		detour.ConfidenceLevel = ConfidenceLevelHighConfidence
	case score >= e.Config.LikelyThreshold:
		detour.ConfidenceLevel = ConfidenceLevelLikely
	default:
		detour.ConfidenceLevel = ConfidenceLevelSuspected
	}
}
