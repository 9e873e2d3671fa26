package detourtracker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/elastic_client"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/redis_client"
)

const numConsumers = 2
const batchSize = 200

// DetourElasticEvent is indexed whenever a batch creates or corroborates a
// detour
type DetourElasticEvent struct {
	Timestamp time.Time `json:"timestamp"`

	DetourID string `json:"detour_id"`
	RouteID  string `json:"route_id"`

	Status          string `json:"status"`
	EvidenceCount   int    `json:"evidence_count"`
	ConfidenceScore int    `json:"confidence_score"`
	ConfidenceLevel string `json:"confidence_level"`
}

func StartConsumers(tracker *Tracker) {
	log.Info().Msg("Starting detour consumers")

	queue, err := redis_client.QueueConnection.OpenQueue("detour-queue")
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(numConsumers*batchSize, 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < numConsumers; i++ {
		go startDetourConsumer(queue, i, tracker)
	}
}

func startDetourConsumer(queue rmq.Queue, id int, tracker *Tracker) {
	log.Info().Msgf("Starting detour consumer %d", id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("detour-queue-%d", id), batchSize, 2*time.Second, NewBatchConsumer(id, tracker)); err != nil {
		panic(err)
	}
}

type BatchConsumer struct {
	id      int
	tracker *Tracker
}

func NewBatchConsumer(id int, tracker *Tracker) *BatchConsumer {
	return &BatchConsumer{id: id, tracker: tracker}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	var events []*VehicleUpdateEvent

	for _, payload := range payloads {
		var event *VehicleUpdateEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode realtime event")
			continue
		}

		events = append(events, event)
	}

	mutated := consumer.tracker.ProcessEvents(events)

	currentTime := time.Now()
	yearNumber, weekNumber := currentTime.ISOWeek()
	eventsIndexName := fmt.Sprintf("detour-events-%d-%d", yearNumber, weekNumber)

	for _, record := range mutated {
		elasticEvent, _ := json.Marshal(DetourElasticEvent{
			Timestamp: currentTime,

			DetourID: record.PrimaryIdentifier,
			RouteID:  record.RouteID,

			Status:          string(record.Status),
			EvidenceCount:   record.EvidenceCount,
			ConfidenceScore: record.ConfidenceScore,
			ConfidenceLevel: string(record.ConfidenceLevel),
		})

		elastic_client.IndexRequest(eventsIndexName, elasticEvent)
	}

	// Persistence happens after the processing pass, never inside it
	if len(mutated) > 0 {
		consumer.tracker.Persist()
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack realtime event")
		}
	}
}

func StartCleaner() {
	cleaner := rmq.NewCleaner(redis_client.QueueConnection)

	for range time.Tick(30 * time.Second) {
		returned, err := cleaner.Clean()
		if err != nil {
			log.Error().Err(err).Msg("Failed to clean realtime queue")
			continue
		}

		if returned > 0 {
			log.Info().Int64("returned", returned).Msg("Cleaned realtime queue")
		}
	}
}
