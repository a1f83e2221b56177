package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"airport/internal/config"
	"airport/internal/env"
	"airport/internal/ingest"
	"airport/internal/logging"
	"airport/internal/metrics"
	"airport/internal/postgres"
	"airport/internal/service"
	"airport/internal/storage"
	"airport/models"
	"airport/pkg/aotload"
	"airport/pkg/geo"
	"airport/pkg/graceful"
	"airport/pkg/kafkaclient"
)

type fetched = service.FetchedObject[*models.Airport]

func main() {
	env.LoadEnv()
	cfg, err := config.Load(config.SectionMinIO, config.SectionKafka, config.SectionDatabase)
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

// run returns once the consumer stops. A non-nil error leaves the failed
// offset uncommitted for the next run.
func run(cfg *config.Config) error {
	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
			slog.Error("metrics server stopped", "err", err)
		}
	}()

	db, err := postgres.New(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	repo := postgres.NewAirportRepo(db)

	s3Service, err := storage.NewS3Service(cfg.MinIO)
	if err != nil {
		return err
	}

	slog.Info("connecting to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
	consumer := kafkaclient.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	consumer.StartConsuming(ctx)
	defer consumer.Stop()

	iterator := service.NewIterator(consumer, s3Service.GetAirportObject)
	iterator.Permanent = func(err error) bool {
		return errors.Is(err, aotload.ErrInvalidRecord)
	}

	pipeline := ingest.NewPipeline(
		ingest.NewStage[fetched]("describe", describe),
		ingest.NewStage[fetched]("persist", func(ctx context.Context, obj *fetched) error {
			return repo.Upsert(ctx, obj.Data)
		}),
	)

	indexed := pipeline.Process(ctx, iterator.Objects(ctx))
	slog.Info("indexer finished", "indexed", indexed)
	return iterator.Err()
}

func describe(_ context.Context, obj *fetched) error {
	a := obj.Data
	continent, ok := geo.ContinentName(a.Continent)
	if !ok {
		slog.Warn("unknown continent code", "ident", a.Ident, "continent", a.Continent)
	}
	_, subdivision := geo.SplitRegion(a.ISORegion)
	slog.Info("indexing airport",
		"ident", a.Ident,
		"kind", a.Kind,
		"continent", continent,
		"country", a.ISOCountry,
		"subdivision", subdivision,
		"key", obj.Event.S3.Object.Key,
	)
	return nil
}
