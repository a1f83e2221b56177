package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airport",
		Subsystem: "records",
		Name:      "decoded_total",
		Help:      "Airport records decoded, by source format and result",
	}, []string{"source", "result"})

	RecordsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airport",
		Subsystem: "records",
		Name:      "stored_total",
		Help:      "Airport records written, by sink and result",
	}, []string{"sink", "result"})
)

// Result is the "result" label value for err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics server shutdown", "err", err)
		}
	}()

	slog.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
