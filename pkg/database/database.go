package database

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultConnectionString = "mongodb://localhost:27017/"
const defaultDatabase = "barrietransit"

func Connect() error {
	connectionString := defaultConnectionString
	dbName := defaultDatabase

	if value := os.Getenv("BTP_MONGODB_CONNECTION"); value != "" {
		connectionString = value
	}

	if value := os.Getenv("BTP_MONGODB_DATABASE"); value != "" {
		dbName = value
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	database := client.Database(dbName)

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: database,
	}

	if err := client.Ping(context.Background(), nil); err != nil {
		return err
	}

	createIndexes()

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}
