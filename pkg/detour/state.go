package detour

import (
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// EngineState is the single unit of mutable detour detection state. Every
// engine entry point takes it explicitly so independent instances (per test,
// per region) can coexist; callers own serialization across entry points.
type EngineState struct {
	VehicleTracking map[string]*VehicleTrackingRecord
	PendingPaths    map[string][]*PendingPath
	ActiveDetours   map[string]*Detour
	DetourHistory   []*DetourHistoryEntry

	DetourIDCounter uint64
}

func NewEngineState() *EngineState {
	return &EngineState{
		VehicleTracking: map[string]*VehicleTrackingRecord{},
		PendingPaths:    map[string][]*PendingPath{},
		ActiveDetours:   map[string]*Detour{},
		DetourHistory:   []*DetourHistoryEntry{},
	}
}

// StateSnapshot is the JSON-serializable projection of EngineState handed to
// the persistence layer. It never shares memory with the live state, so it
// can be marshalled after the state lock is released.
type StateSnapshot struct {
	VehicleTracking map[string]*VehicleTrackingRecord `json:"vehicleTracking" bson:"vehicletracking"`
	PendingPaths    map[string][]*PendingPath         `json:"pendingPaths" bson:"pendingpaths"`
	ActiveDetours   map[string]*Detour                `json:"activeDetours" bson:"activedetours"`
	DetourHistory   []*DetourHistoryEntry             `json:"detourHistory" bson:"detourhistory"`

	DetourIDCounter uint64 `json:"detourIdCounter" bson:"detouridcounter"`
}

func SnapshotState(state *EngineState) *StateSnapshot {
	snapshot := &StateSnapshot{}

	if err := copier.CopyWithOption(snapshot, state, copier.Option{DeepCopy: true}); err != nil {
		// Should not happen - the field sets match. Losing one persistence
		// cycle is preferable to handing out the live maps.
		log.Error().Err(err).Msg("Failed to copy engine state for snapshot")

		return &StateSnapshot{
			VehicleTracking: map[string]*VehicleTrackingRecord{},
			PendingPaths:    map[string][]*PendingPath{},
			ActiveDetours:   map[string]*Detour{},
			DetourIDCounter: state.DetourIDCounter,
		}
	}

	return snapshot
}

// NormalizeSnapshot hydrates an EngineState from a persisted snapshot,
// filling safe defaults for anything a legacy or partially written document
// is missing. A nil snapshot yields a fresh state.
func NormalizeSnapshot(snapshot *StateSnapshot) *EngineState {
	state := NewEngineState()

	if snapshot == nil {
		return state
	}

	if snapshot.VehicleTracking != nil {
		for id, record := range snapshot.VehicleTracking {
			if record == nil {
				continue
			}
			if record.OffRouteBreadcrumbs == nil {
				record.OffRouteBreadcrumbs = []Breadcrumb{}
			}
			state.VehicleTracking[id] = record
		}
	}

	if snapshot.PendingPaths != nil {
		for routeKey, paths := range snapshot.PendingPaths {
			for _, path := range paths {
				if path == nil || len(path.Path) == 0 {
					continue
				}
				state.PendingPaths[routeKey] = append(state.PendingPaths[routeKey], path)
			}
		}
	}

	if snapshot.ActiveDetours != nil {
		for id, record := range snapshot.ActiveDetours {
			if record == nil {
				continue
			}
			normalizeDetour(record)
			state.ActiveDetours[id] = record
		}
	}

	if snapshot.DetourHistory != nil {
		for _, entry := range snapshot.DetourHistory {
			if entry == nil {
				continue
			}
			normalizeDetour(&entry.Detour)
			state.DetourHistory = append(state.DetourHistory, entry)
		}
	}

	state.DetourIDCounter = snapshot.DetourIDCounter

	return state
}

func normalizeDetour(record *Detour) {
	if record.Status == "" {
		record.Status = DetourStatusSuspected
	}
	if record.ConfidenceLevel == "" {
		record.ConfidenceLevel = ConfidenceLevelSuspected
	}
	if record.AlertCorrelation == "" {
		record.AlertCorrelation = AlertCorrelationNone
	}
	if record.RouteKey == "" {
		record.RouteKey = RouteKey(record.RouteID, record.DirectionID)
	}
	if record.ConfirmedByVehicles == nil {
		record.ConfirmedByVehicles = []VehicleSighting{}
	}
	if record.ClearingEvidence == nil {
		record.ClearingEvidence = []VehicleSighting{}
	}
	if record.AffectedStops == nil {
		record.AffectedStops = []EnrichedStop{}
	}
	if record.EvidenceCount == 0 {
		record.EvidenceCount = len(uniqueVehicleIDs(record.ConfirmedByVehicles))
	}
}
