package transit

// TripInfo maps a trip onto the route & direction it serves.
type TripInfo struct {
	RouteID     string
	DirectionID string
}

// ReferenceData is the static GTFS-derived lookup data the realtime engines
// need: route shape variants, trip mappings and stop lists. It is loaded once
// at startup and treated as immutable afterwards.
type ReferenceData struct {
	// Shapes maps a shape identifier onto its polyline
	Shapes map[string][]Location

	// Trips maps a trip identifier onto its route & direction
	Trips map[string]TripInfo

	// RouteShapes maps a route identifier onto all of its shape variants
	RouteShapes map[string][]string

	Stops []Stop

	// RouteStops maps a route identifier onto the stops it serves
	RouteStops map[string][]string
}

// StopByID returns the stop with the given identifier
func (r *ReferenceData) StopByID(id string) *Stop {
	for i := range r.Stops {
		if r.Stops[i].PrimaryIdentifier == id {
			return &r.Stops[i]
		}
	}

	return nil
}
