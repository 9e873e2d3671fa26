package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createDetourIndexes()
}

func createDetourIndexes() {
	// Engine state snapshots - one document per engine instance
	detourStateCollection := GetCollection("detour_state")
	_, err := detourStateCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "instance", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	// Archived detours
	detourHistoryCollection := GetCollection("detour_history")
	_, err = detourHistoryCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "detour.id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "detour.routeid", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "archivedat", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(30 * 24 * 3600), // Expire after 30 days
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
