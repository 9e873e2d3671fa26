package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

func TestHaversine(t *testing.T) {
	t.Parallel()

	t.Run("zero distance for identical points", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, Haversine(44.3894, -79.6903, 44.3894, -79.6903))
	})

	t.Run("one hundredth of a degree of latitude", func(t *testing.T) {
		t.Parallel()

		distance := Haversine(44.3894, -79.6903, 44.3994, -79.6903)
		assert.InDelta(t, 1112.0, distance, 5.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		t.Parallel()

		forward := Haversine(44.3894, -79.6903, 44.4101, -79.6820)
		backward := Haversine(44.4101, -79.6820, 44.3894, -79.6903)

		assert.InDelta(t, forward, backward, 0.0001)
	})
}

func TestDistanceFromSegment(t *testing.T) {
	t.Parallel()

	segmentStart := transit.Location{Latitude: 44.3900, Longitude: -79.6900}
	segmentEnd := transit.Location{Latitude: 44.4100, Longitude: -79.6900}

	t.Run("perpendicular offset from segment middle", func(t *testing.T) {
		t.Parallel()

		// 0.001 degrees of longitude is roughly 80m at this latitude
		point := transit.Location{Latitude: 44.4000, Longitude: -79.6890}
		distance := DistanceFromSegment(point, segmentStart, segmentEnd)

		assert.InDelta(t, 79.5, distance, 3.0)
	})

	t.Run("point on the segment", func(t *testing.T) {
		t.Parallel()

		point := transit.Location{Latitude: 44.4000, Longitude: -79.6900}
		assert.InDelta(t, 0.0, DistanceFromSegment(point, segmentStart, segmentEnd), 0.5)
	})

	t.Run("clamps beyond the far endpoint", func(t *testing.T) {
		t.Parallel()

		point := transit.Location{Latitude: 44.4200, Longitude: -79.6900}
		distance := DistanceFromSegment(point, segmentStart, segmentEnd)

		assert.InDelta(t, Distance(point, segmentEnd), distance, 0.5)
	})

	t.Run("zero length segment degrades to point distance", func(t *testing.T) {
		t.Parallel()

		point := transit.Location{Latitude: 44.4000, Longitude: -79.6890}
		distance := DistanceFromSegment(point, segmentStart, segmentStart)

		assert.InDelta(t, Distance(point, segmentStart), distance, 0.5)
	})
}

func TestNearestSegment(t *testing.T) {
	t.Parallel()

	polyline := []transit.Location{
		{Latitude: 44.3900, Longitude: -79.6900},
		{Latitude: 44.4000, Longitude: -79.6900},
		{Latitude: 44.4100, Longitude: -79.6900},
	}

	t.Run("empty polyline", func(t *testing.T) {
		t.Parallel()

		index, distance := NearestSegment(transit.Location{Latitude: 44.39, Longitude: -79.69}, nil)
		assert.Equal(t, -1, index)
		assert.True(t, math.IsInf(distance, 1))
	})

	t.Run("single point polyline", func(t *testing.T) {
		t.Parallel()

		point := transit.Location{Latitude: 44.3910, Longitude: -79.6900}
		index, distance := NearestSegment(point, polyline[:1])

		assert.Equal(t, 0, index)
		assert.InDelta(t, Distance(point, polyline[0]), distance, 0.5)
	})

	t.Run("picks the closest segment", func(t *testing.T) {
		t.Parallel()

		point := transit.Location{Latitude: 44.4050, Longitude: -79.6890}
		index, distance := NearestSegment(point, polyline)

		assert.Equal(t, 1, index)
		assert.InDelta(t, 79.5, distance, 3.0)
	})
}

func TestDistanceFromPolyline(t *testing.T) {
	t.Parallel()

	polyline := []transit.Location{
		{Latitude: 44.3900, Longitude: -79.6900},
		{Latitude: 44.4000, Longitude: -79.6900},
		{Latitude: 44.4100, Longitude: -79.6900},
	}

	t.Run("empty polyline is infinitely far", func(t *testing.T) {
		t.Parallel()

		distance := DistanceFromPolyline(transit.Location{Latitude: 44.39, Longitude: -79.69}, nil)
		assert.True(t, math.IsInf(distance, 1))
	})

	t.Run("minimum across segments", func(t *testing.T) {
		t.Parallel()

		point := transit.Location{Latitude: 44.3950, Longitude: -79.6880}
		distance := DistanceFromPolyline(point, polyline)

		require.InDelta(t, 159.0, distance, 6.0)
	})
}
