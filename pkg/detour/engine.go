package detour

import (
	"math"
	"time"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/geo"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// Engine evaluates vehicle snapshots against route shapes and maintains
// detour records inside an EngineState. It holds configuration only - all
// mutable detection state lives in the EngineState passed into each call.
type Engine struct {
	Config    EngineConfig
	Overrides map[string]RouteConfigOverride
}

func NewEngine(config EngineConfig, overrides map[string]RouteConfigOverride) *Engine {
	if overrides == nil {
		overrides = map[string]RouteConfigOverride{}
	}

	return &Engine{
		Config:    config,
		Overrides: overrides,
	}
}

// nearestShape finds the closest shape variant of a route to a point. ok is
// false when the route has no usable shapes.
func nearestShape(reference *transit.ReferenceData, routeID string, point transit.Location) (string, float64, bool) {
	var nearestShapeID string
	nearestDistance := math.Inf(1)
	found := false

	for _, shapeID := range reference.RouteShapes[routeID] {
		polyline := reference.Shapes[shapeID]
		if len(polyline) == 0 {
			continue
		}

		distance := geo.DistanceFromPolyline(point, polyline)
		if distance < nearestDistance {
			nearestDistance = distance
			nearestShapeID = shapeID
		}
		found = true
	}

	return nearestShapeID, nearestDistance, found
}

// resolveTripRoute backfills a vehicle's route & direction from the static
// trip mapping when the feed entry only carries a trip id. Fields already set
// by the feed win.
func resolveTripRoute(vehicle *transit.Vehicle, reference *transit.ReferenceData) {
	if vehicle.TripID == "" || reference == nil {
		return
	}

	trip, exists := reference.Trips[vehicle.TripID]
	if !exists {
		return
	}

	if vehicle.RouteID == "" {
		vehicle.RouteID = trip.RouteID
	}
	if vehicle.DirectionID == "" {
		vehicle.DirectionID = trip.DirectionID
	}
}

func uniqueVehicleIDs(sightings []VehicleSighting) []string {
	seen := map[string]bool{}
	var ids []string

	for _, sighting := range sightings {
		if !seen[sighting.VehicleID] {
			seen[sighting.VehicleID] = true
			ids = append(ids, sighting.VehicleID)
		}
	}

	return ids
}

// recordSighting appends a vehicle sighting unless the vehicle already has an
// entry within the dedup window. Returns whether anything was added.
func recordSighting(sightings *[]VehicleSighting, vehicleID string, timestamp time.Time, window time.Duration) bool {
	for _, sighting := range *sightings {
		if sighting.VehicleID == vehicleID && timestamp.Sub(sighting.Timestamp) <= window {
			return false
		}
	}

	*sightings = append(*sightings, VehicleSighting{
		VehicleID: vehicleID,
		Timestamp: timestamp,
	})

	return true
}
