package detourtracker

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/detour"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

// Tracker owns one detour engine instance plus the serialization boundary
// around its state. Queue consumers and the periodic sweep both go through
// the mutex - the engine itself is single threaded by contract.
type Tracker struct {
	mutex sync.Mutex

	engine *detour.Engine
	state  *detour.EngineState

	reference *transit.ReferenceData

	// Latest known service alerts, replaced as alert events arrive
	serviceAlerts map[string]transit.ServiceAlert

	lastSweep time.Time

	instance string
}

func NewTracker(engine *detour.Engine, state *detour.EngineState, reference *transit.ReferenceData, instance string) *Tracker {
	return &Tracker{
		engine: engine,
		state:  state,

		reference: reference,

		serviceAlerts: map[string]transit.ServiceAlert{},

		lastSweep: time.Now(),

		instance: instance,
	}
}

// ProcessEvents runs a batch of queue events through the engine under the
// state mutex. Returns detached copies of the detours created or corroborated
// by the batch - callers read them after the mutex is released.
func (t *Tracker) ProcessEvents(events []*VehicleUpdateEvent) []*detour.Detour {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	var mutated []*detour.Detour
	alertsChanged := false

	for _, event := range events {
		switch event.MessageType {
		case VehicleUpdateEventTypeLocation:
			if result := t.engine.ProcessVehicle(t.state, event.Vehicle, t.reference); result != nil {
				mutated = append(mutated, result)
			}

			t.engine.CheckClearing(t.state, event.Vehicle, t.reference)

		case VehicleUpdateEventTypeServiceAlert:
			if event.ServiceAlert != nil {
				t.serviceAlerts[event.ServiceAlert.PrimaryIdentifier] = *event.ServiceAlert
				alertsChanged = true
			}

		default:
			log.Error().Str("messagetype", string(event.MessageType)).Msg("Unknown message type")
		}
	}

	if alertsChanged || len(mutated) > 0 {
		t.engine.CorrelateServiceAlerts(t.state, t.alertList())
	}

	return detour.CopyDetours(mutated)
}

// Sweep runs the periodic correlation & expiry pass. It returns the history
// entries archived by this pass so the caller can persist them.
func (t *Tracker) Sweep() []*detour.DetourHistoryEntry {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.engine.CorrelateServiceAlerts(t.state, t.alertList())
	t.engine.CleanupExpired(t.state)

	var archived []*detour.DetourHistoryEntry
	for _, entry := range t.state.DetourHistory {
		if entry.ArchivedAt.After(t.lastSweep) {
			archived = append(archived, entry)
		}
	}
	t.lastSweep = time.Now()

	return archived
}

// Snapshot produces the persistence projection under the mutex
func (t *Tracker) Snapshot() *detour.StateSnapshot {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return detour.SnapshotState(t.state)
}

// ActiveDetours returns detached copies of the current suspected detours for
// read-only consumers
func (t *Tracker) ActiveDetours() []*detour.Detour {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return detour.CopyDetours(t.state.GetActiveDetours())
}

// DetoursForRoute returns detached copies of the detours on a route, enriched
// for display
func (t *Tracker) DetoursForRoute(routeID string, directionID string) []*detour.Detour {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	detours := t.engine.EnrichDetoursWithRouteContext(
		t.state.GetDetoursForRoute(routeID, directionID),
		t.reference.Stops, t.reference.RouteStops)

	// The enriched records still share slices with the live state
	return detour.CopyDetours(detours)
}

// DetourHistory returns archived detours, newest first
func (t *Tracker) DetourHistory(routeID string, limit int) []*detour.DetourHistoryEntry {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.state.GetDetourHistory(routeID, limit)
}

func (t *Tracker) alertList() []transit.ServiceAlert {
	alerts := make([]transit.ServiceAlert, 0, len(t.serviceAlerts))

	for _, alert := range t.serviceAlerts {
		alerts = append(alerts, alert)
	}

	return alerts
}
