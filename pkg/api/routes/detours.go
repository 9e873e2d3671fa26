package routes

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	iso8601 "github.com/senseyeio/duration"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/database"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/detour"
)

func DetoursRouter(router fiber.Router) {
	router.Get("/", listDetours)
	router.Get("/history", getDetourHistory)
	router.Get("/route/:identifier", getRouteDetours)
}

// The API serves the detour engine's last persisted snapshot rather than
// talking to the engine process directly
func loadEngineState() (*detour.EngineState, error) {
	stateCollection := database.GetCollection("detour_state")

	var document struct {
		Snapshot *detour.StateSnapshot `bson:"snapshot"`
	}

	opts := options.FindOne().SetSort(bson.M{"modificationdatetime": -1})
	err := stateCollection.FindOne(context.Background(), bson.M{}, opts).Decode(&document)
	if err != nil {
		return nil, err
	}

	return detour.NormalizeSnapshot(document.Snapshot), nil
}

func marshalGroups(c *fiber.Ctx, data interface{}) error {
	groups := []string{"basic"}
	if c.Query("detailed") == "true" {
		groups = append(groups, "detailed")
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, data)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce detours",
		})
	}

	return c.JSON(reduced)
}

func listDetours(c *fiber.Ctx) error {
	state, err := loadEngineState()
	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No detour state available",
		})
	}

	return marshalGroups(c, state.GetActiveDetours())
}

func getRouteDetours(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	directionID := c.Query("direction")

	state, err := loadEngineState()
	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No detour state available",
		})
	}

	detours := state.GetDetoursForRoute(identifier, directionID)

	return marshalGroups(c, fiber.Map{
		"active":  state.HasActiveDetour(identifier, directionID),
		"detours": detours,
	})
}

func getDetourHistory(c *fiber.Ctx) error {
	routeID := c.Query("route")

	limit := 50
	if limitQuery := c.Query("limit"); limitQuery != "" {
		parsed, err := strconv.Atoi(limitQuery)
		if err != nil || parsed <= 0 {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter limit should be a positive integer",
			})
		}
		limit = parsed
	}

	windowQuery := c.Query("window", "P7D")
	windowDuration, err := iso8601.ParseISO8601(windowQuery)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter window should be an ISO8601 duration",
		})
	}

	now := time.Now()
	cutoff := now.Add(-windowDuration.Shift(now).Sub(now))

	state, err := loadEngineState()
	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No detour state available",
		})
	}

	var entries []*detour.DetourHistoryEntry
	for _, entry := range state.GetDetourHistory(routeID, limit) {
		if entry.ArchivedAt.Before(cutoff) {
			continue
		}

		entries = append(entries, entry)
	}

	return marshalGroups(c, entries)
}
