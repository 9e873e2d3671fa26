package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

func TestSimplifyPath(t *testing.T) {
	t.Parallel()

	t.Run("short paths pass through untouched", func(t *testing.T) {
		t.Parallel()

		path := []transit.Location{
			{Latitude: 44.39, Longitude: -79.69},
			{Latitude: 44.40, Longitude: -79.69},
		}

		assert.Equal(t, path, SimplifyPath(path, 20))
	})

	t.Run("drops points closer than the minimum distance", func(t *testing.T) {
		t.Parallel()

		// Points roughly 11m apart
		path := make([]transit.Location, 5)
		for i := range path {
			path[i] = transit.Location{
				Latitude:  44.3900 + float64(i)*0.0001,
				Longitude: -79.6900,
			}
		}

		simplified := SimplifyPath(path, 25)

		require.Len(t, simplified, 3)
		assert.Equal(t, path[0], simplified[0])
		assert.Equal(t, path[3], simplified[1])
		assert.Equal(t, path[4], simplified[2])
	})

	t.Run("endpoints always survive", func(t *testing.T) {
		t.Parallel()

		path := make([]transit.Location, 10)
		for i := range path {
			path[i] = transit.Location{
				Latitude:  44.3900 + float64(i)*0.00001,
				Longitude: -79.6900,
			}
		}

		simplified := SimplifyPath(path, 1000)

		require.Len(t, simplified, 2)
		assert.Equal(t, path[0], simplified[0])
		assert.Equal(t, path[len(path)-1], simplified[1])
	})
}

func TestDouglasPeucker(t *testing.T) {
	t.Parallel()

	t.Run("straight line collapses to its endpoints", func(t *testing.T) {
		t.Parallel()

		path := make([]transit.Location, 6)
		for i := range path {
			path[i] = transit.Location{
				Latitude:  44.3900 + float64(i)*0.001,
				Longitude: -79.6900,
			}
		}

		reduced := DouglasPeucker(path, 10)

		require.Len(t, reduced, 2)
		assert.Equal(t, path[0], reduced[0])
		assert.Equal(t, path[5], reduced[1])
	})

	t.Run("keeps significant deviations", func(t *testing.T) {
		t.Parallel()

		spike := transit.Location{Latitude: 44.3920, Longitude: -79.6850}
		path := []transit.Location{
			{Latitude: 44.3900, Longitude: -79.6900},
			{Latitude: 44.3910, Longitude: -79.6900},
			spike,
			{Latitude: 44.3930, Longitude: -79.6900},
			{Latitude: 44.3940, Longitude: -79.6900},
		}

		reduced := DouglasPeucker(path, 10)

		assert.Contains(t, reduced, spike)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		t.Parallel()

		path := []transit.Location{
			{Latitude: 44.3900, Longitude: -79.6900},
			{Latitude: 44.3910, Longitude: -79.6890},
			{Latitude: 44.3920, Longitude: -79.6900},
			{Latitude: 44.3930, Longitude: -79.6890},
		}

		original := make([]transit.Location, len(path))
		copy(original, path)

		DouglasPeucker(path, 5)

		assert.Equal(t, original, path)
	})
}
