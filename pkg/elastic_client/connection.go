package elastic_client

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
)

var Client *elasticsearch.Client
var bulkIndexer esutil.BulkIndexer

// Connect sets up the Elasticsearch event sink. The sink is optional - with
// no address configured and required false it is skipped entirely and
// IndexRequest becomes a no-op.
func Connect(required bool) error {
	address := os.Getenv("BTP_ELASTICSEARCH_ADDRESS")

	if address == "" && !required {
		log.Info().Msg("Skipping Elasticsearch setup")
		return nil
	} else if address == "" && required {
		log.Fatal().Msg("Elasticsearch configuration not set")
	}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
		Username:  os.Getenv("BTP_ELASTICSEARCH_USERNAME"),
		Password:  os.Getenv("BTP_ELASTICSEARCH_PASSWORD"),

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return err
	}

	if _, err := es.Info(); err != nil {
		return err
	}

	Client = es

	bulkIndexer, err = esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        es,
		FlushInterval: 15 * time.Second,
	})
	if err != nil {
		return err
	}

	log.Info().Msgf("Elasticsearch client setup for %s", address)

	return nil
}

// IndexRequest queues a document for bulk indexing. Safe to call when the
// sink was never configured.
func IndexRequest(indexName string, document []byte) {
	if Client == nil || bulkIndexer == nil {
		return
	}

	err := bulkIndexer.Add(context.Background(), esutil.BulkIndexerItem{
		Index:  indexName,
		Action: "index",
		Body:   bytes.NewReader(document),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to queue document for indexing")
	}
}
