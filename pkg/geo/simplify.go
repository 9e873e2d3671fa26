package geo

import (
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// SimplifyPath decimates a noisy breadcrumb path by keeping a point only if
// it is at least minDistanceMeters away from the last kept point. The first
// and last points always survive.
func SimplifyPath(path []transit.Location, minDistanceMeters float64) []transit.Location {
	if len(path) <= 2 {
		return path
	}

	simplified := []transit.Location{path[0]}

	for _, point := range path[1 : len(path)-1] {
		if Distance(simplified[len(simplified)-1], point) >= minDistanceMeters {
			simplified = append(simplified, point)
		}
	}

	return append(simplified, path[len(path)-1])
}

// DouglasPeucker reduces a polyline to within toleranceMeters of the
// original. Display utility only - detection uses SimplifyPath.
func DouglasPeucker(path []transit.Location, toleranceMeters float64) []transit.Location {
	if len(path) <= 2 {
		return path
	}

	maxDistance := 0.0
	maxIndex := 0

	for i := 1; i < len(path)-1; i++ {
		distance := DistanceFromSegment(path[i], path[0], path[len(path)-1])

		if distance > maxDistance {
			maxDistance = distance
			maxIndex = i
		}
	}

	if maxDistance <= toleranceMeters {
		return []transit.Location{path[0], path[len(path)-1]}
	}

	left := DouglasPeucker(path[:maxIndex+1], toleranceMeters)
	right := DouglasPeucker(path[maxIndex:], toleranceMeters)

	reduced := make([]transit.Location, 0, len(left)+len(right)-1)
	reduced = append(reduced, left[:len(left)-1]...)

	return append(reduced, right...)
}
