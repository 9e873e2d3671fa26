package detour

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// ProcessVehicle advances the per-vehicle off-route state machine by one tick.
// It returns the detour that this vehicle's excursion created or corroborated,
// or nil. A route or direction missing from the feed entry is resolved from
// the static trip mapping. A vehicle with no usable identity, coordinates or
// route shapes is a no-op, never an error - one bad feed entry must not stall
// the batch.
func (e *Engine) ProcessVehicle(state *EngineState, vehicle *transit.Vehicle, reference *transit.ReferenceData) *Detour {
	if vehicle == nil || vehicle.PrimaryIdentifier == "" || vehicle.Location == nil {
		return nil
	}

	resolveTripRoute(vehicle, reference)
	if vehicle.RouteID == "" {
		return nil
	}

	shapeID, distance, found := nearestShape(reference, vehicle.RouteID, *vehicle.Location)
	if !found {
		return nil
	}

	config := e.ResolveRouteConfig(vehicle.RouteID)
	now := time.Now()

	record := state.VehicleTracking[vehicle.PrimaryIdentifier]
	if record == nil {
		record = &VehicleTrackingRecord{
			VehicleID:           vehicle.PrimaryIdentifier,
			OffRouteBreadcrumbs: []Breadcrumb{},
		}
		state.VehicleTracking[vehicle.PrimaryIdentifier] = record
	}

	record.TripID = vehicle.TripID
	record.RouteID = vehicle.RouteID
	record.DirectionID = vehicle.DirectionID
	record.LastMatchedShapeID = shapeID
	record.LastUpdateTime = now

	isOffRoute := distance > config.OffRouteThresholdMeters

	var result *Detour

	switch {
	case isOffRoute && !record.IsCurrentlyOffRoute:
		record.IsCurrentlyOffRoute = true
		record.OffRouteBreadcrumbs = []Breadcrumb{}
		startTime := now
		record.OffRouteStartTime = &startTime

		log.Debug().
			Str("vehicle", record.VehicleID).
			Str("route", record.RouteID).
			Float64("distance", distance).
			Msg("Vehicle went off route")

	case !isOffRoute && record.IsCurrentlyOffRoute:
		result = e.finalizeExcursion(state, record, config, now)

		record.IsCurrentlyOffRoute = false
		record.OffRouteBreadcrumbs = []Breadcrumb{}
		record.OffRouteStartTime = nil
	}

	if record.IsCurrentlyOffRoute {
		record.OffRouteBreadcrumbs = append(record.OffRouteBreadcrumbs, Breadcrumb{
			Location: *vehicle.Location,

			Timestamp:              now,
			MatchedShapeID:         shapeID,
			OffRouteDistanceMeters: distance,
		})
	}

	return result
}
