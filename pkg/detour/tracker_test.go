package detour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

func TestProcessVehicleStateMachine(t *testing.T) {
	t.Parallel()

	t.Run("on-route vehicle stays on route", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		result := engine.ProcessVehicle(state, locationVehicle("bus-1", 44.4000, -79.6900), testReference())

		assert.Nil(t, result)
		record := state.VehicleTracking["bus-1"]
		require.NotNil(t, record)
		assert.False(t, record.IsCurrentlyOffRoute)
		assert.Empty(t, record.OffRouteBreadcrumbs)
		assert.Equal(t, "shape_8_north", record.LastMatchedShapeID)
	})

	t.Run("small GPS offset is still on route", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		// ~80m east, inside the 100m threshold
		engine.ProcessVehicle(state, locationVehicle("bus-1", 44.4000, -79.6890), testReference())

		assert.False(t, state.VehicleTracking["bus-1"].IsCurrentlyOffRoute)
	})

	t.Run("off-route transition starts a breadcrumb trail", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		engine.ProcessVehicle(state, locationVehicle("bus-1", 44.4000, -79.6900), testReference())
		engine.ProcessVehicle(state, locationVehicle("bus-1", 44.4000, -79.6830), testReference())

		record := state.VehicleTracking["bus-1"]
		assert.True(t, record.IsCurrentlyOffRoute)
		require.NotNil(t, record.OffRouteStartTime)

		// The transition tick itself contributes the first breadcrumb
		require.Len(t, record.OffRouteBreadcrumbs, 1)
		assert.Greater(t, record.OffRouteBreadcrumbs[0].OffRouteDistanceMeters, 100.0)
	})

	t.Run("breadcrumbs accumulate every off-route tick", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		for _, latitude := range []float64{44.3950, 44.3990, 44.4030} {
			engine.ProcessVehicle(state, locationVehicle("bus-1", latitude, -79.6830), testReference())
		}

		assert.Len(t, state.VehicleTracking["bus-1"].OffRouteBreadcrumbs, 3)
	})

	t.Run("rejoining resets the off-route state", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		driveExcursion(engine, state, testReference(), "bus-1")

		record := state.VehicleTracking["bus-1"]
		assert.False(t, record.IsCurrentlyOffRoute)
		assert.Empty(t, record.OffRouteBreadcrumbs)
		assert.Nil(t, record.OffRouteStartTime)
	})

	t.Run("a fresh excursion discards the previous trail", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		driveExcursion(engine, state, testReference(), "bus-1")
		engine.ProcessVehicle(state, locationVehicle("bus-1", 44.3950, -79.6830), testReference())

		assert.Len(t, state.VehicleTracking["bus-1"].OffRouteBreadcrumbs, 1)
	})

	t.Run("vehicle without coordinates is a no-op", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		vehicle := &transit.Vehicle{PrimaryIdentifier: "bus-1", RouteID: "8"}
		assert.Nil(t, engine.ProcessVehicle(state, vehicle, testReference()))
		assert.Empty(t, state.VehicleTracking)
	})

	t.Run("route without shapes is a no-op", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		vehicle := locationVehicle("bus-1", 44.4000, -79.6830)
		vehicle.RouteID = "400"

		assert.Nil(t, engine.ProcessVehicle(state, vehicle, testReference()))
		assert.Empty(t, state.VehicleTracking)
	})

	t.Run("nil vehicle is a no-op", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		assert.Nil(t, engine.ProcessVehicle(state, nil, testReference()))
	})
}

func TestProcessVehicleTripResolution(t *testing.T) {
	t.Parallel()

	tripReference := func() *transit.ReferenceData {
		reference := testReference()
		reference.Trips["trip-801"] = transit.TripInfo{RouteID: "8", DirectionID: "0"}

		return reference
	}

	tripVehicle := func(vehicleID string, latitude float64, longitude float64) *transit.Vehicle {
		return &transit.Vehicle{
			PrimaryIdentifier: vehicleID,
			TripID:            "trip-801",

			Location: &transit.Location{Latitude: latitude, Longitude: longitude},
		}
	}

	t.Run("route and direction come from the trip mapping", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		assert.Nil(t, engine.ProcessVehicle(state, tripVehicle("bus-1", 44.4000, -79.6900), tripReference()))

		record := state.VehicleTracking["bus-1"]
		require.NotNil(t, record)
		assert.Equal(t, "8", record.RouteID)
		assert.Equal(t, "0", record.DirectionID)
	})

	t.Run("trip-only vehicles corroborate under the resolved route key", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()
		reference := tripReference()

		driveTripExcursion := func(vehicleID string) *Detour {
			engine.ProcessVehicle(state, tripVehicle(vehicleID, 44.3890, -79.6900), reference)
			for _, latitude := range []float64{44.3950, 44.3990, 44.4030} {
				engine.ProcessVehicle(state, tripVehicle(vehicleID, latitude, -79.6830), reference)
			}

			return engine.ProcessVehicle(state, tripVehicle(vehicleID, 44.4100, -79.6900), reference)
		}

		assert.Nil(t, driveTripExcursion("bus-1"))
		result := driveTripExcursion("bus-2")

		require.NotNil(t, result)
		assert.Equal(t, "8", result.RouteID)
		assert.Equal(t, "8_0", result.RouteKey)
	})

	t.Run("feed fields win over the trip mapping", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		reference := tripReference()
		reference.Trips["trip-801"] = transit.TripInfo{RouteID: "9", DirectionID: "1"}

		vehicle := tripVehicle("bus-1", 44.4000, -79.6900)
		vehicle.RouteID = "8"
		vehicle.DirectionID = "0"

		engine.ProcessVehicle(state, vehicle, reference)

		record := state.VehicleTracking["bus-1"]
		require.NotNil(t, record)
		assert.Equal(t, "8", record.RouteID)
		assert.Equal(t, "0", record.DirectionID)
	})

	t.Run("unknown trip without a route is a no-op", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		vehicle := tripVehicle("bus-1", 44.4000, -79.6900)
		vehicle.TripID = "trip-999"

		assert.Nil(t, engine.ProcessVehicle(state, vehicle, tripReference()))
		assert.Empty(t, state.VehicleTracking)
	})
}

func TestFinalizeExcursionFilters(t *testing.T) {
	t.Parallel()

	t.Run("too few breadcrumbs is jitter", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		engine.ProcessVehicle(state, locationVehicle("bus-1", 44.3950, -79.6830), testReference())
		engine.ProcessVehicle(state, locationVehicle("bus-1", 44.3990, -79.6830), testReference())
		result := engine.ProcessVehicle(state, locationVehicle("bus-1", 44.4100, -79.6900), testReference())

		assert.Nil(t, result)
		assert.Empty(t, state.PendingPaths)
	})

	t.Run("too brief an excursion is jitter", func(t *testing.T) {
		t.Parallel()

		// Default 90s minimum duration; all ticks land within the same
		// instant so the excursion is far too brief
		engine := NewEngine(defaultEngineConfig, nil)
		state := NewEngineState()

		driveExcursion(engine, state, testReference(), "bus-1")

		assert.Empty(t, state.PendingPaths)
	})

	t.Run("a qualifying excursion becomes a pending path", func(t *testing.T) {
		t.Parallel()

		engine := testEngine()
		state := NewEngineState()

		result := driveExcursion(engine, state, testReference(), "bus-1")

		assert.Nil(t, result)
		require.Len(t, state.PendingPaths["8_0"], 1)

		pending := state.PendingPaths["8_0"][0]
		assert.Equal(t, "bus-1", pending.VehicleID)
		assert.Equal(t, "8", pending.RouteID)
		assert.NotEmpty(t, pending.Path)
	})
}
