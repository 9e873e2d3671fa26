package detour

import (
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/slices"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/geo"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// EnrichDetourWithRouteContext returns a copy of the detour annotated with
// the stops along its corridor and a human readable segment label. Read-only
// with respect to engine state - purely for display.
func (e *Engine) EnrichDetourWithRouteContext(detour *Detour, stops []transit.Stop, routeStops map[string][]string) *Detour {
	if detour == nil {
		return nil
	}

	config := e.ResolveRouteConfig(detour.RouteID)

	enriched := *detour
	enriched.AffectedStops = []EnrichedStop{}

	type positionedStop struct {
		stop         EnrichedStop
		segmentIndex int
	}

	var candidates []transit.Stop
	if stopIDs, exists := routeStops[detour.RouteID]; exists {
		for _, stopID := range stopIDs {
			for i := range stops {
				if stops[i].PrimaryIdentifier == stopID {
					candidates = append(candidates, stops[i])
					break
				}
			}
		}
	} else {
		candidates = stops
	}

	var affected []positionedStop

	for _, stop := range candidates {
		segmentIndex, distance := geo.NearestSegment(stop.Location, enriched.Polyline)

		if distance <= config.StopMatchRadiusMeters {
			affected = append(affected, positionedStop{
				stop: EnrichedStop{
					StopID: stop.PrimaryIdentifier,
					Code:   stop.Code,
					Name:   stop.Name,

					Location:       stop.Location,
					DistanceMeters: distance,
				},
				segmentIndex: segmentIndex,
			})
		}
	}

	slices.SortFunc(affected, func(a positionedStop, b positionedStop) int {
		if a.segmentIndex != b.segmentIndex {
			return a.segmentIndex - b.segmentIndex
		}

		if a.stop.DistanceMeters < b.stop.DistanceMeters {
			return -1
		} else if a.stop.DistanceMeters > b.stop.DistanceMeters {
			return 1
		}

		return 0
	})

	if len(affected) > config.MaxAffectedStops {
		affected = affected[:config.MaxAffectedStops]
	}

	for _, positioned := range affected {
		enriched.AffectedStops = append(enriched.AffectedStops, positioned.stop)
	}

	switch {
	case len(enriched.AffectedStops) >= 2:
		enriched.SegmentLabel = fmt.Sprintf("%s to %s",
			enriched.AffectedStops[0].Name,
			enriched.AffectedStops[len(enriched.AffectedStops)-1].Name)
	case len(enriched.AffectedStops) == 1:
		enriched.SegmentLabel = fmt.Sprintf("Near %s", enriched.AffectedStops[0].Name)
	}

	return &enriched
}

// EnrichDetoursWithRouteContext enriches a batch of detours concurrently
func (e *Engine) EnrichDetoursWithRouteContext(detours []*Detour, stops []transit.Stop, routeStops map[string][]string) []*Detour {
	enriched := make([]*Detour, len(detours))

	enrichPool := pool.New().WithMaxGoroutines(4)

	for i, detour := range detours {
		enrichPool.Go(func() {
			enriched[i] = e.EnrichDetourWithRouteContext(detour, stops, routeStops)
		})
	}

	enrichPool.Wait()

	return enriched
}
