package detour

import (
	"time"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

type DetourStatus string

const (
	DetourStatusSuspected DetourStatus = "suspected"
	DetourStatusCleared   DetourStatus = "cleared"
)

type ConfidenceLevel string

const (
	ConfidenceLevelSuspected      ConfidenceLevel = "suspected"
	ConfidenceLevelLikely         ConfidenceLevel = "likely"
	ConfidenceLevelHighConfidence ConfidenceLevel = "high-confidence"
)

type AlertCorrelation string

const (
	AlertCorrelationNone    AlertCorrelation = "none"
	AlertCorrelationMatched AlertCorrelation = "matched"
)

// Breadcrumb is a timestamped coordinate recorded while a vehicle is judged
// off its route shape.
type Breadcrumb struct {
	Location transit.Location `json:"location" bson:"location"`

	Timestamp            time.Time `json:"timestamp" bson:"timestamp"`
	MatchedShapeID       string    `json:"matchedShapeId,omitempty" bson:"matchedshapeid,omitempty"`
	OffRouteDistanceMeters float64 `json:"offRouteDistanceMeters" bson:"offroutedistancemeters"`
}

// VehicleTrackingRecord is the per-vehicle state machine record. Created on
// first sighting, mutated every tick, purged once stale.
type VehicleTrackingRecord struct {
	VehicleID   string `json:"vehicleId" bson:"vehicleid"`
	TripID      string `json:"tripId,omitempty" bson:"tripid,omitempty"`
	RouteID     string `json:"routeId" bson:"routeid"`
	DirectionID string `json:"directionId,omitempty" bson:"directionid,omitempty"`

	IsCurrentlyOffRoute bool         `json:"isCurrentlyOffRoute" bson:"iscurrentlyoffroute"`
	OffRouteBreadcrumbs []Breadcrumb `json:"offRouteBreadcrumbs" bson:"offroutebreadcrumbs"`
	OffRouteStartTime   *time.Time   `json:"offRouteStartTime,omitempty" bson:"offroutestarttime,omitempty"`

	LastMatchedShapeID string    `json:"lastMatchedShapeId,omitempty" bson:"lastmatchedshapeid,omitempty"`
	LastUpdateTime     time.Time `json:"lastUpdateTime" bson:"lastupdatetime"`
}

// PendingPath is one vehicle's finalized off-route excursion awaiting
// corroboration by a second vehicle.
type PendingPath struct {
	VehicleID string             `json:"vehicleId" bson:"vehicleid"`
	Path      []transit.Location `json:"path" bson:"path"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`

	RouteID     string `json:"routeId" bson:"routeid"`
	DirectionID string `json:"directionId,omitempty" bson:"directionid,omitempty"`
}

// VehicleSighting records one vehicle contributing corroborating or clearing
// evidence for a detour.
type VehicleSighting struct {
	VehicleID string    `json:"vehicleId" bson:"vehicleid" groups:"basic"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp" groups:"basic"`
}

// AlertMatch is the result of cross-referencing a detour against the official
// service alert feed.
type AlertMatch struct {
	Matched   bool       `json:"matched" bson:"matched" groups:"basic"`
	AlertID   string     `json:"alertId,omitempty" bson:"alertid,omitempty" groups:"basic"`
	Title     string     `json:"title,omitempty" bson:"title,omitempty" groups:"basic"`
	Effect    string     `json:"effect,omitempty" bson:"effect,omitempty" groups:"basic"`
	Severity  string     `json:"severity,omitempty" bson:"severity,omitempty" groups:"basic"`
	MatchedAt *time.Time `json:"matchedAt,omitempty" bson:"matchedat,omitempty" groups:"detailed"`
}

// EnrichedStop is a stop judged to lie on a detour's corridor, annotated for
// display.
type EnrichedStop struct {
	StopID string `json:"stopId" bson:"stopid" groups:"basic"`
	Code   string `json:"code,omitempty" bson:"code,omitempty" groups:"basic"`
	Name   string `json:"name" bson:"name" groups:"basic"`

	Location       transit.Location `json:"location" bson:"location" groups:"basic"`
	DistanceMeters float64          `json:"distanceMeters" bson:"distancemeters" groups:"basic"`
}

// Detour is a corroborated off-route corridor on a route & direction. Status
// only ever moves suspected -> cleared.
type Detour struct {
	PrimaryIdentifier string `json:"id" bson:"id" groups:"basic"`

	RouteID     string `json:"routeId" bson:"routeid" groups:"basic"`
	DirectionID string `json:"directionId,omitempty" bson:"directionid,omitempty" groups:"basic"`
	RouteKey    string `json:"routeKey" bson:"routekey" groups:"internal"`

	Polyline []transit.Location `json:"polyline" bson:"polyline" groups:"basic"`
	Centroid transit.Location   `json:"centroid" bson:"centroid" groups:"basic"`

	ConfirmedByVehicles []VehicleSighting `json:"confirmedByVehicles" bson:"confirmedbyvehicles" groups:"detailed"`

	FirstDetectedAt time.Time `json:"firstDetectedAt" bson:"firstdetectedat" groups:"basic"`
	LastSeenAt      time.Time `json:"lastSeenAt" bson:"lastseenat" groups:"basic"`

	Status DetourStatus `json:"status" bson:"status" groups:"basic"`

	EvidenceCount   int             `json:"evidenceCount" bson:"evidencecount" groups:"basic"`
	ConfidenceScore int             `json:"confidenceScore" bson:"confidencescore" groups:"basic"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel" bson:"confidencelevel" groups:"basic"`

	OfficialAlert    AlertMatch       `json:"officialAlert" bson:"officialalert" groups:"basic"`
	AlertCorrelation AlertCorrelation `json:"alertCorrelation" bson:"alertcorrelation" groups:"basic"`

	AffectedStops []EnrichedStop `json:"affectedStops" bson:"affectedstops" groups:"basic"`
	SegmentLabel  string         `json:"segmentLabel,omitempty" bson:"segmentlabel,omitempty" groups:"basic"`

	ClearingEvidence       []VehicleSighting `json:"clearingEvidence" bson:"clearingevidence" groups:"detailed"`
	ClearedAt              *time.Time        `json:"clearedAt,omitempty" bson:"clearedat,omitempty" groups:"basic"`
	ClearedByEvidenceCount *int              `json:"clearedByEvidenceCount,omitempty" bson:"clearedbyevidencecount,omitempty" groups:"detailed"`
}

// DetourHistoryEntry is a deep copy of a detour at archival time
type DetourHistoryEntry struct {
	Detour Detour `json:"detour" bson:"detour" groups:"basic"`

	ArchivedAt    time.Time `json:"archivedAt" bson:"archivedat" groups:"basic"`
	ArchiveReason string    `json:"archiveReason" bson:"archivereason" groups:"basic"`
}

// RouteKey builds the composite identifier used to scope pending paths and
// detours to a route & direction. An unknown direction collapses to "unknown".
func RouteKey(routeID string, directionID string) string {
	if directionID == "" {
		directionID = "unknown"
	}

	return routeID + "_" + directionID
}
