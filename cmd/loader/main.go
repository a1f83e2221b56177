package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"airport/internal/config"
	"airport/internal/env"
	"airport/internal/logging"
	"airport/internal/metrics"
	"airport/internal/storage"
	"airport/models"
	"airport/pkg/aotload"
	"airport/pkg/geo"
	"airport/pkg/graceful"
)

type stats struct {
	decoded int
	skipped int
}

func main() {
	file := flag.String("file", "", "airport-codes CSV or NDJSON file")
	format := flag.String("format", "", "csv or jsonl (default: from file extension)")
	overwrite := flag.Bool("overwrite", false, "replace airport objects that already exist")
	near := flag.String("near", "", `print the airports closest to "<lat>, <lon>" after loading`)
	limit := flag.Int("limit", 5, "number of airports printed by -near")
	flag.Parse()

	env.LoadEnv()
	cfg, err := config.Load(config.SectionMinIO)
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if *file == "" {
		log.Fatal("-file is required")
	}
	if *format == "" {
		*format = formatFromPath(*file)
	}

	var origin *models.Coords
	if *near != "" {
		c, err := models.ParseCoords(*near)
		if err != nil {
			log.Fatalf("invalid -near: %v", err)
		}
		origin = &c
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()
	start := time.Now()

	s3Service, err := storage.NewS3Service(cfg.MinIO)
	if err != nil {
		log.Fatal(err)
	}
	s3Service.Overwrite = *overwrite
	if err := s3Service.CreateBucket(ctx, cfg.MinIO.Region); err != nil {
		log.Fatal(err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	results, err := read(ctx, f, *format)
	if err != nil {
		log.Fatal(err)
	}

	airports := make(chan models.Airport)
	var (
		st       stats
		readErr  error
		gathered []models.Airport
	)
	go func() {
		defer close(airports)
		for res := range results {
			metrics.RecordsDecoded.WithLabelValues(*format, metrics.Result(res.Err)).Inc()
			if res.Err != nil {
				if errors.Is(res.Err, aotload.ErrInvalidRecord) {
					st.skipped++
					slog.Warn("skipping record", "line", res.Line, "err", res.Err)
					continue
				}
				readErr = res.Err
				continue
			}
			st.decoded++
			if origin != nil {
				gathered = append(gathered, res.Airport)
			}
			select {
			case airports <- res.Airport:
			case <-ctx.Done():
				return
			}
		}
	}()

	stored := s3Service.StoreAirportsFromChannel(ctx, airports)
	if readErr != nil {
		slog.Error("input ended early", "err", readErr)
	}

	slog.Info("finished loading airports",
		"file", *file,
		"decoded", st.decoded,
		"skipped", st.skipped,
		"stored", stored,
		"took", time.Since(start).String(),
	)

	if origin != nil {
		for _, r := range geo.Nearest(*origin, gathered, *limit) {
			fmt.Printf("%-8s %-40s %8.1f km\n", r.Airport.Ident, r.Airport.Name, r.DistanceMeters/1000)
		}
	}

	if readErr != nil {
		os.Exit(1)
	}
}

func read(ctx context.Context, r io.Reader, format string) (<-chan aotload.Result, error) {
	switch format {
	case "csv":
		return aotload.ReadCSV(ctx, r), nil
	case "jsonl", "ndjson", "json":
		return aotload.ReadJSONLines(ctx, r), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func formatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
