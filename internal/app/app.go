// Package app holds the wiring shared by the pipeline binaries: backend
// selection from config and the admin HTTP listener.
package app

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roadtrip/internal/broker"
	"roadtrip/internal/config"
	"roadtrip/internal/metrics"
	"roadtrip/internal/store"
)

// OpenStore selects Postgres when DATABASE_URL is set, otherwise the
// in-memory store for dev mode.
func OpenStore(cfg config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("app: no DATABASE_URL, using in-memory store")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		if err := pg.MigrateDir(dir); err != nil {
			pg.Close()
			return nil, err
		}
	}
	return pg, nil
}

// OpenBus selects the Redis Streams bus when REDIS_URL is set, otherwise the
// in-process bus.
func OpenBus(cfg config.Config) (broker.Bus, error) {
	if cfg.RedisURL == "" {
		log.Printf("app: no REDIS_URL, using in-process bus")
		return broker.NewMemoryBus(), nil
	}
	return broker.NewRedisBus(cfg.RedisURL)
}

// AdminServer serves metrics and health on the admin listener.
func AdminServer(cfg config.Config) *http.Server {
	metrics.RegisterDefault()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return &http.Server{Addr: cfg.AdminAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
