package geo

import (
	"math"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two points
func Haversine(lat1 float64, lon1 float64, lat2 float64, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func Distance(a transit.Location, b transit.Location) float64 {
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// DistanceFromSegment returns the distance in meters from a point to the
// segment [a,b]. The projection treats longitude/latitude deltas as planar
// x/y, which is fine at city scale; the offset itself is then measured with
// Haversine. A zero-length segment degrades to the point distance.
// Shameless taken 'inspiration' from https://stackoverflow.com/a/6853926
func DistanceFromSegment(point transit.Location, a transit.Location, b transit.Location) float64 {
	A := point.Longitude - a.Longitude
	B := point.Latitude - a.Latitude
	C := b.Longitude - a.Longitude
	D := b.Latitude - a.Latitude

	dot := A*C + B*D
	lenSq := C*C + D*D

	param := -1.0
	if lenSq != 0 {
		param = dot / lenSq
	}

	var xx, yy float64

	if param < 0 {
		xx = a.Longitude
		yy = a.Latitude
	} else if param > 1 {
		xx = b.Longitude
		yy = b.Latitude
	} else {
		xx = a.Longitude + param*C
		yy = a.Latitude + param*D
	}

	return Haversine(point.Latitude, point.Longitude, yy, xx)
}

// NearestSegment returns the index of the polyline segment closest to the
// point along with the distance to it. Returns (-1, +Inf) for an empty
// polyline and (0, point distance) for a single point.
func NearestSegment(point transit.Location, polyline []transit.Location) (int, float64) {
	if len(polyline) == 0 {
		return -1, math.Inf(1)
	}

	if len(polyline) == 1 {
		return 0, Distance(point, polyline[0])
	}

	nearestIndex := 0
	nearestDistance := math.Inf(1)

	for i := 0; i < len(polyline)-1; i++ {
		distance := DistanceFromSegment(point, polyline[i], polyline[i+1])

		if distance < nearestDistance {
			nearestDistance = distance
			nearestIndex = i
		}
	}

	return nearestIndex, nearestDistance
}

// DistanceFromPolyline returns the minimum distance in meters from a point to
// any segment of the polyline. An empty polyline returns +Inf, a single point
// polyline returns the direct point distance.
func DistanceFromPolyline(point transit.Location, polyline []transit.Location) float64 {
	if len(polyline) == 0 {
		return math.Inf(1)
	}

	if len(polyline) == 1 {
		return Distance(point, polyline[0])
	}

	minDistance := math.Inf(1)
	for i := 0; i < len(polyline)-1; i++ {
		distance := DistanceFromSegment(point, polyline[i], polyline[i+1])

		if distance < minDistance {
			minDistance = distance
		}
	}

	return minDistance
}
