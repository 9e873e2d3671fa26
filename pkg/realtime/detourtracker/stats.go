package detourtracker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/redis_client"
)

func StartStatsServer(tracker *Tracker) {
	http.Handle("/detour-stats/overview", NewStatsHandler(tracker))
	http.Handle("/health", NewHealthHandler())

	log.Info().Msg("Stats server listening on http://localhost:3333/detour-stats/overview")
	if err := http.ListenAndServe(":3333", nil); err != nil {
		panic(err)
	}
}

type StatsServerHandler struct {
	tracker *Tracker
}

func NewStatsHandler(tracker *Tracker) *StatsServerHandler {
	return &StatsServerHandler{tracker: tracker}
}

func (handler *StatsServerHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	queues, err := redis_client.QueueConnection.GetOpenQueues()
	if err != nil {
		panic(err)
	}

	stats, err := redis_client.QueueConnection.CollectStats(queues)
	if err != nil {
		panic(err)
	}

	activeDetours := handler.tracker.ActiveDetours()

	fmt.Fprintf(writer, "active detours: %d\n\n", len(activeDetours))
	for _, record := range activeDetours {
		fmt.Fprintf(writer, "%s %s confidence=%d level=%s vehicles=%d\n",
			record.PrimaryIdentifier, record.RouteKey,
			record.ConfidenceScore, record.ConfidenceLevel, record.EvidenceCount)
	}

	fmt.Fprint(writer, "\n", stats.String())
}

type HealthHandler struct {
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (handler *HealthHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	testRedis := redis_client.Client.ClientID(context.TODO())
	if testRedis.Err() != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(writer, testRedis.Err())
		return
	}

	writer.WriteHeader(http.StatusOK)
	fmt.Fprint(writer, "ok")
}
