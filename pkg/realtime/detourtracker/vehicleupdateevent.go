package detourtracker

import (
	"time"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

type VehicleUpdateEventType string

const (
	VehicleUpdateEventTypeLocation     VehicleUpdateEventType = "Location"
	VehicleUpdateEventTypeServiceAlert VehicleUpdateEventType = "ServiceAlert"
)

// VehicleUpdateEvent is the message published onto the realtime queue by the
// feed importers.
type VehicleUpdateEvent struct {
	MessageType VehicleUpdateEventType
	LocalID     string

	Vehicle      *transit.Vehicle
	ServiceAlert *transit.ServiceAlert

	SourceType string
	RecordedAt time.Time
}
