package geo

import (
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// PathsOverlap reports whether two paths run along the same corridor. The
// containment check is symmetric - the fraction of points of each path that
// fall within corridorWidthMeters of the other path must meet
// overlapThreshold in both directions, so a short path cannot trivially
// "overlap" a much longer one.
func PathsOverlap(pathA []transit.Location, pathB []transit.Location, corridorWidthMeters float64, overlapThreshold float64) bool {
	if len(pathA) == 0 || len(pathB) == 0 {
		return false
	}

	return overlapFraction(pathA, pathB, corridorWidthMeters) >= overlapThreshold &&
		overlapFraction(pathB, pathA, corridorWidthMeters) >= overlapThreshold
}

func overlapFraction(path []transit.Location, against []transit.Location, corridorWidthMeters float64) float64 {
	within := 0

	for _, point := range path {
		if DistanceFromPolyline(point, against) <= corridorWidthMeters {
			within += 1
		}
	}

	return float64(within) / float64(len(path))
}

// PathCentroid returns the arithmetic mean of the path coordinates, or nil
// for an empty path.
func PathCentroid(path []transit.Location) *transit.Location {
	if len(path) == 0 {
		return nil
	}

	var latSum, lonSum float64
	for _, point := range path {
		latSum += point.Latitude
		lonSum += point.Longitude
	}

	return &transit.Location{
		Latitude:  latSum / float64(len(path)),
		Longitude: lonSum / float64(len(path)),
	}
}
