package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"roadtrip/internal/app"
	"roadtrip/internal/attractions"
	"roadtrip/internal/broker"
	"roadtrip/internal/config"
	"roadtrip/internal/places"
	"roadtrip/internal/providers/google"
	"roadtrip/internal/providers/here"
	"roadtrip/internal/relay"
	"roadtrip/internal/translate"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Require("GOOGLE_PLACES_KEY", "HEREMAPS_ATTRACTIONS_KEY"); err != nil {
		log.Fatalf("%v", err)
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

	translator := translate.NewClient(cfg.ProviderTimeout())
	r := &relay.Relay{
		Bus: bus,
		Places: &places.Engine{
			Store:      st,
			Search:     google.NewClient(cfg.GooglePlacesKey, cfg.ProviderTimeout(), cfg.SearchRadiusM),
			Translator: translator,
		},
		Attractions: &attractions.Engine{
			Store:      st,
			Discovery:  here.NewClient(cfg.HereMapsKey, cfg.ProviderTimeout()),
			Translator: translator,
		},
		MaxPerWaypoint: cfg.MaxPlacesPerWaypoint,
		MaxAttractions: cfg.MaxAttractions,
	}

	admin := app.AdminServer(cfg)
	go func() {
		log.Printf("places: admin listening on %s", cfg.AdminAddr)
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("admin server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, _ := os.Hostname()
	log.Printf("places: consuming %s as %s/%s", broker.TopicUserRequests, cfg.ConsumerGroup, host)
	if err := bus.Consume(ctx, broker.TopicUserRequests, cfg.ConsumerGroup, host, r.Process); err != nil && ctx.Err() == nil {
		log.Fatalf("consume: %v", err)
	}
}
