package redis_client

import (
	"context"
	"os"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultDatabase = 0

func Connect() error {
	address := defaultConnectionAddress
	password := os.Getenv("BTP_REDIS_PASSWORD")
	database := defaultDatabase

	if value := os.Getenv("BTP_REDIS_ADDRESS"); value != "" {
		address = value
	}

	if value := os.Getenv("BTP_REDIS_DATABASE"); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	if err := statusCmd.Err(); err != nil {
		return err
	}

	var err error
	QueueConnection, err = rmq.OpenConnectionWithRedisClient("barrietransit", Client, nil)
	if err != nil {
		return err
	}

	return nil
}
