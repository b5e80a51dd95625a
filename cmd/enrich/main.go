package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"roadtrip/internal/app"
	"roadtrip/internal/broker"
	"roadtrip/internal/config"
	"roadtrip/internal/enrich"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	st, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	bus, err := app.OpenBus(cfg)
	if err != nil {
		log.Fatalf("open bus: %v", err)
	}

	e := &enrich.Enricher{Bus: bus, Store: st}

	admin := app.AdminServer(cfg)
	go func() {
		log.Printf("enrich: admin listening on %s", cfg.AdminAddr)
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("admin server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, _ := os.Hostname()
	log.Printf("enrich: consuming %s as %s/%s", broker.TopicEnrichment, cfg.ConsumerGroup, host)
	if err := bus.Consume(ctx, broker.TopicEnrichment, cfg.ConsumerGroup, host, e.Process); err != nil && ctx.Err() == nil {
		log.Fatalf("consume: %v", err)
	}
}
