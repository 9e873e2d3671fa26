package detourtracker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/database"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/detour"
)

type stateDocument struct {
	Instance string                `bson:"instance"`
	Snapshot *detour.StateSnapshot `bson:"snapshot"`

	ModificationDateTime time.Time `bson:"modificationdatetime"`
}

// Persist writes the current engine state snapshot to mongo, retrying with
// exponential backoff. A failed write never corrupts the in-memory state -
// the next cycle simply writes a fresher snapshot.
func (t *Tracker) Persist() {
	snapshot := t.Snapshot()

	document := stateDocument{
		Instance: t.instance,
		Snapshot: snapshot,

		ModificationDateTime: time.Now(),
	}

	operation := func() error {
		stateCollection := database.GetCollection("detour_state")

		opts := options.Replace().SetUpsert(true)
		_, err := stateCollection.ReplaceOne(context.Background(),
			bson.M{"instance": t.instance}, document, opts)

		return err
	}

	retryPolicy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, retryPolicy); err != nil {
		log.Error().Err(err).Msg("Failed to persist detour state")
	}
}

// PersistHistory appends newly archived detours to the history collection
func (t *Tracker) PersistHistory(entries []*detour.DetourHistoryEntry) {
	if len(entries) == 0 {
		return
	}

	historyCollection := database.GetCollection("detour_history")

	documents := make([]interface{}, len(entries))
	for i, entry := range entries {
		documents[i] = entry
	}

	if _, err := historyCollection.InsertMany(context.Background(), documents); err != nil {
		log.Error().Err(err).Msg("Failed to persist detour history")
	}
}

// RestoreState hydrates an engine state from the last persisted snapshot.
// Anything missing or malformed degrades to a fresh state rather than an
// error.
func RestoreState(instance string) *detour.EngineState {
	stateCollection := database.GetCollection("detour_state")

	var document stateDocument
	err := stateCollection.FindOne(context.Background(), bson.M{"instance": instance}).Decode(&document)
	if err != nil {
		log.Info().Str("instance", instance).Msg("No persisted detour state, starting fresh")
		return detour.NewEngineState()
	}

	state := detour.NormalizeSnapshot(document.Snapshot)

	log.Info().
		Str("instance", instance).
		Int("detours", len(state.ActiveDetours)).
		Int("vehicles", len(state.VehicleTracking)).
		Msg("Restored detour state")

	return state
}
