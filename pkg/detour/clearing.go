package detour

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/geo"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// clearingThreshold is the number of distinct on-route vehicles required to
// retire a detour at a given confidence tier.
func clearingThreshold(level ConfidenceLevel) int {
	switch level {
	case ConfidenceLevelHighConfidence:
		return 4
	case ConfidenceLevelLikely:
		return 3
	default:
		return 2
	}
}

// CheckClearing records a vehicle as clearing evidence against every
// suspected detour on its route & direction when the vehicle is on route and
// passing near the detour's centroid. Once enough distinct vehicles have done
// so the detour is cleared - a detour corroborated by N vehicles never needs
// more than N to clear.
func (e *Engine) CheckClearing(state *EngineState, vehicle *transit.Vehicle, reference *transit.ReferenceData) {
	if vehicle == nil || vehicle.PrimaryIdentifier == "" || vehicle.Location == nil {
		return
	}

	resolveTripRoute(vehicle, reference)
	if vehicle.RouteID == "" {
		return
	}

	routeKey := RouteKey(vehicle.RouteID, vehicle.DirectionID)
	config := e.ResolveRouteConfig(vehicle.RouteID)
	now := time.Now()

	// Only an on-route vehicle counts as clearing evidence
	_, distance, found := nearestShape(reference, vehicle.RouteID, *vehicle.Location)
	if !found || distance > config.OffRouteThresholdMeters {
		return
	}

	for _, detour := range state.ActiveDetours {
		if detour.RouteKey != routeKey || detour.Status != DetourStatusSuspected {
			continue
		}

		if geo.Distance(*vehicle.Location, detour.Centroid) > config.CorridorWidthMeters*3 {
			continue
		}

		if !recordSighting(&detour.ClearingEvidence, vehicle.PrimaryIdentifier, now, config.PendingPathExpiry) {
			continue
		}

		required := clearingThreshold(detour.ConfidenceLevel)
		if detour.EvidenceCount < required {
			required = detour.EvidenceCount
		}

		uniqueEvidence := len(uniqueVehicleIDs(detour.ClearingEvidence))
		if uniqueEvidence >= required {
			clearedAt := now
			clearedBy := uniqueEvidence

			detour.Status = DetourStatusCleared
			detour.ClearedAt = &clearedAt
			detour.ClearedByEvidenceCount = &clearedBy

			e.updateDetourConfidence(detour, now)

			log.Info().
				Str("detour", detour.PrimaryIdentifier).
				Int("evidence", uniqueEvidence).
				Msg("Detour cleared by on-route vehicles")
		}
	}
}
