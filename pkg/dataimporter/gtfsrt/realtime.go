package gtfsrt

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/adjust/rmq/v5"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/realtime/detourtracker"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/redis_client"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/util"
)

// Realtime converts a GTFS-RT feed snapshot into detour queue events
type Realtime struct {
	queue rmq.Queue

	redisCache *cache.Cache[string]
}

func (r *Realtime) SetupRealtimeQueue(queue rmq.Queue) {
	r.queue = queue

	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(90*time.Minute))

	r.redisCache = cache.New[string](redisStore)
}

func (r *Realtime) Import(reader io.Reader) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	feed := gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, &feed); err != nil {
		return err
	}

	withLocation := 0
	serviceAlertCount := 0
	skippedStale := 0

	for _, entity := range feed.Entity {
		if entity.Alert != nil {
			serviceAlertCount += r.importAlert(entity.GetId(), entity.Alert)
		}

		vehiclePosition := entity.GetVehicle()
		if vehiclePosition == nil {
			continue
		}

		recordedAtTime := time.Now()
		if vehiclePosition.Timestamp != nil {
			recordedAtTime = time.Unix(int64(*vehiclePosition.Timestamp), 0)

			// Skip any records that haven't been updated in over 20 minutes
			if time.Now().UTC().Sub(recordedAtTime).Minutes() > 20 {
				skippedStale += 1
				continue
			}
		}

		trip := vehiclePosition.GetTrip()
		routeID := trip.GetRouteId()

		vehicleID := vehiclePosition.GetVehicle().GetId()
		if vehicleID == "" {
			vehicleID = entity.GetId()
		}

		if vehicleID == "" || routeID == "" || vehiclePosition.Position == nil {
			continue
		}

		directionID := ""
		if trip.DirectionId != nil {
			directionID = strconv.Itoa(int(trip.GetDirectionId()))
		}

		updateEvent := detourtracker.VehicleUpdateEvent{
			MessageType: detourtracker.VehicleUpdateEventTypeLocation,
			LocalID:     fmt.Sprintf("gtfsrt-location-%s", vehicleID),

			Vehicle: &transit.Vehicle{
				PrimaryIdentifier: vehicleID,

				RouteID:     routeID,
				DirectionID: directionID,
				TripID:      trip.GetTripId(),

				Location: &transit.Location{
					Latitude:  float64(vehiclePosition.Position.GetLatitude()),
					Longitude: float64(vehiclePosition.Position.GetLongitude()),
				},
			},

			SourceType: "GTFS-RT",
			RecordedAt: recordedAtTime,
		}

		updateEventJson, _ := json.Marshal(updateEvent)
		r.queue.PublishBytes(updateEventJson)

		withLocation += 1
	}

	log.Info().
		Int("withlocation", withLocation).
		Int("servicealert", serviceAlertCount).
		Int("stale", skippedStale).
		Int("total", len(feed.Entity)).
		Msg("Submitted vehicle updates")

	return nil
}

func (r *Realtime) importAlert(entityID string, alert *gtfs.Alert) int {
	effect := convertAlertEffect(alert.GetEffect())

	var affectedRoutes []string
	for _, informedEntity := range alert.InformedEntity {
		if routeID := informedEntity.GetRouteId(); routeID != "" {
			affectedRoutes = append(affectedRoutes, routeID)
		}
	}

	title := util.TrimString(firstTranslation(alert.HeaderText), 256)
	description := util.TrimString(firstTranslation(alert.DescriptionText), 2048)

	hash := sha256.New()
	hash.Write([]byte(effect))
	hash.Write([]byte(title))
	hash.Write([]byte(description))
	localID := fmt.Sprintf("gtfsrt-servicealert-%s-%x", entityID, hash.Sum(nil))

	// An unchanged alert republished on every snapshot is just noise
	if _, err := r.redisCache.Get(context.Background(), localID); err == nil {
		return 0
	}
	r.redisCache.Set(context.Background(), localID, "seen")

	updateEvent := detourtracker.VehicleUpdateEvent{
		MessageType: detourtracker.VehicleUpdateEventTypeServiceAlert,
		LocalID:     localID,

		ServiceAlert: &transit.ServiceAlert{
			PrimaryIdentifier: localID,

			Title:    title,
			Text:     description,
			Effect:   effect,
			Severity: alert.GetSeverityLevel().String(),

			AffectedRoutes: affectedRoutes,
		},

		SourceType: "GTFS-RT",
		RecordedAt: time.Now(),
	}

	updateEventJson, _ := json.Marshal(updateEvent)
	r.queue.PublishBytes(updateEventJson)

	return 1
}

func convertAlertEffect(effect gtfs.Alert_Effect) transit.ServiceAlertEffect {
	switch effect {
	case gtfs.Alert_DETOUR:
		return transit.ServiceAlertEffectDetour
	case gtfs.Alert_MODIFIED_SERVICE:
		return transit.ServiceAlertEffectModifiedService
	case gtfs.Alert_NO_SERVICE:
		return transit.ServiceAlertEffectNoService
	case gtfs.Alert_REDUCED_SERVICE:
		return transit.ServiceAlertEffectReducedService
	case gtfs.Alert_SIGNIFICANT_DELAYS:
		return transit.ServiceAlertEffectSevereDelays
	case gtfs.Alert_STOP_MOVED:
		return transit.ServiceAlertEffectStopMoved
	default:
		return transit.ServiceAlertEffectOther
	}
}

func firstTranslation(text *gtfs.TranslatedString) string {
	translations := text.GetTranslation()
	if len(translations) == 0 {
		return ""
	}

	return translations[0].GetText()
}
