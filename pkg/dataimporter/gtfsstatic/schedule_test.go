package gtfsstatic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

func writeDataset(t *testing.T) string {
	t.Helper()

	directory := t.TempDir()

	files := map[string]string{
		"stops.txt": `stop_id,stop_code,stop_name,stop_lat,stop_lon,location_type,parent_station
stop-1,101,Dunlop St,44.3894,-79.6903,0,
stop-2,102,Grove St,44.4030,-79.6900,,
station-1,,Downtown Terminal,44.3890,-79.6910,1,
`,
		"trips.txt": `route_id,service_id,trip_id,trip_headsign,shape_id,direction_id
8,weekday,trip-1,North,shape_8_north,0
8,weekday,trip-2,North,shape_8_north,0
2A,weekday,trip-3,East,shape_2a,1
`,
		"stop_times.txt": `trip_id,arrival_time,departure_time,stop_id,stop_sequence
trip-1,08:00:00,08:00:00,stop-1,1
trip-1,08:05:00,08:05:00,stop-2,2
trip-2,09:00:00,09:00:00,stop-1,1
trip-2,09:05:00,09:05:00,stop-2,2
`,
		"shapes.txt": `shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence
shape_8_north,44.4030,-79.6900,3
shape_8_north,44.3894,-79.6903,1
shape_8_north,44.3950,-79.6901,2
shape_2a,44.3894,-79.6903,1
shape_2a,44.3890,-79.6800,2
`,
	}

	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(directory, name), []byte(contents), 0644))
	}

	return directory
}

func TestLoadReferenceData(t *testing.T) {
	t.Parallel()

	reference, err := LoadReferenceData(writeDataset(t))
	require.NoError(t, err)

	t.Run("shape points are ordered by sequence", func(t *testing.T) {
		t.Parallel()

		polyline := reference.Shapes["shape_8_north"]
		require.Len(t, polyline, 3)
		assert.Equal(t, transit.Location{Latitude: 44.3894, Longitude: -79.6903}, polyline[0])
		assert.Equal(t, transit.Location{Latitude: 44.4030, Longitude: -79.6900}, polyline[2])
	})

	t.Run("trips map onto route and direction", func(t *testing.T) {
		t.Parallel()

		trip, exists := reference.Trips["trip-3"]
		require.True(t, exists)
		assert.Equal(t, "2A", trip.RouteID)
		assert.Equal(t, "1", trip.DirectionID)
	})

	t.Run("route shape variants are deduplicated", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"shape_8_north"}, reference.RouteShapes["8"])
		assert.Equal(t, []string{"shape_2a"}, reference.RouteShapes["2A"])
	})

	t.Run("station parents are not stops", func(t *testing.T) {
		t.Parallel()

		require.Len(t, reference.Stops, 2)
		assert.Nil(t, reference.StopByID("station-1"))

		stop := reference.StopByID("stop-1")
		require.NotNil(t, stop)
		assert.Equal(t, "Dunlop St", stop.Name)
		assert.Equal(t, "101", stop.Code)
		assert.InDelta(t, 44.3894, stop.Location.Latitude, 0.00001)
	})

	t.Run("route stops are in travel order without duplicates", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"stop-1", "stop-2"}, reference.RouteStops["8"])
	})
}

func TestLoadReferenceDataMissingDirectory(t *testing.T) {
	t.Parallel()

	reference, err := LoadReferenceData(filepath.Join(t.TempDir(), "missing"))

	// Missing files are skipped rather than fatal
	require.NoError(t, err)
	assert.Empty(t, reference.Shapes)
	assert.Empty(t, reference.Stops)
}
