package detour

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	state := NewEngineState()

	driveExcursion(engine, state, testReference(), "bus-1")
	driveExcursion(engine, state, testReference(), "bus-2")

	snapshot := SnapshotState(state)
	restored := NormalizeSnapshot(snapshot)

	assert.Equal(t, len(state.ActiveDetours), len(restored.ActiveDetours))
	assert.Equal(t, len(state.VehicleTracking), len(restored.VehicleTracking))
	assert.Equal(t, state.DetourIDCounter, restored.DetourIDCounter)
}

func TestSnapshotStateDetached(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	state := NewEngineState()

	driveExcursion(engine, state, testReference(), "bus-1")
	result := driveExcursion(engine, state, testReference(), "bus-2")
	require.NotNil(t, result)

	snapshot := SnapshotState(state)
	require.Len(t, snapshot.ActiveDetours, 1)

	// The snapshot must not share memory with the live state
	for _, record := range state.ActiveDetours {
		record.EvidenceCount = 99
		record.Polyline[0] = transit.Location{}
	}
	state.VehicleTracking["bus-1"].RouteID = "changed"

	for _, record := range snapshot.ActiveDetours {
		assert.Equal(t, 2, record.EvidenceCount)
		assert.NotZero(t, record.Polyline[0].Latitude)
	}
	assert.Equal(t, "8", snapshot.VehicleTracking["bus-1"].RouteID)
}

func TestNormalizeSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("nil snapshot yields a fresh state", func(t *testing.T) {
		t.Parallel()

		state := NormalizeSnapshot(nil)

		require.NotNil(t, state)
		assert.NotNil(t, state.VehicleTracking)
		assert.NotNil(t, state.PendingPaths)
		assert.NotNil(t, state.ActiveDetours)
		assert.Empty(t, state.ActiveDetours)
	})

	t.Run("partial documents are filled with defaults", func(t *testing.T) {
		t.Parallel()

		snapshot := &StateSnapshot{
			ActiveDetours: map[string]*Detour{
				"d1": {
					PrimaryIdentifier: "d1",
					RouteID:           "8",
					DirectionID:       "0",
					ConfirmedByVehicles: []VehicleSighting{
						{VehicleID: "bus-1", Timestamp: time.Now()},
						{VehicleID: "bus-2", Timestamp: time.Now()},
					},
				},
			},
		}

		state := NormalizeSnapshot(snapshot)

		detour := state.ActiveDetours["d1"]
		require.NotNil(t, detour)
		assert.Equal(t, DetourStatusSuspected, detour.Status)
		assert.Equal(t, ConfidenceLevelSuspected, detour.ConfidenceLevel)
		assert.Equal(t, AlertCorrelationNone, detour.AlertCorrelation)
		assert.Equal(t, "8_0", detour.RouteKey)
		assert.Equal(t, 2, detour.EvidenceCount)
		assert.NotNil(t, detour.ClearingEvidence)
		assert.NotNil(t, detour.AffectedStops)
	})

	t.Run("nil and empty entries are discarded", func(t *testing.T) {
		t.Parallel()

		snapshot := &StateSnapshot{
			VehicleTracking: map[string]*VehicleTrackingRecord{
				"bus-1": nil,
				"bus-2": {VehicleID: "bus-2", RouteID: "8"},
			},
			PendingPaths: map[string][]*PendingPath{
				"8_0": {nil, {VehicleID: "bus-2", Path: nil}},
			},
			ActiveDetours: map[string]*Detour{
				"d1": nil,
			},
			DetourHistory: []*DetourHistoryEntry{nil},
		}

		state := NormalizeSnapshot(snapshot)

		assert.NotContains(t, state.VehicleTracking, "bus-1")
		require.Contains(t, state.VehicleTracking, "bus-2")
		assert.NotNil(t, state.VehicleTracking["bus-2"].OffRouteBreadcrumbs)

		assert.Empty(t, state.PendingPaths["8_0"])
		assert.Empty(t, state.ActiveDetours)
		assert.Empty(t, state.DetourHistory)
	})
}
