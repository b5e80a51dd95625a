package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roadtrip/internal/app"
	"roadtrip/internal/broker"
	"roadtrip/internal/chat"
	"roadtrip/internal/config"
	"roadtrip/internal/conversation"
	"roadtrip/internal/gazetteer"
	"roadtrip/internal/metrics"
	"roadtrip/internal/providers/google"
	"roadtrip/internal/route"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Require("GOOGLE_PLACES_KEY"); err != nil {
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

	cities, err := gazetteer.Load()
	if err != nil {
		log.Fatalf("load gazetteer: %v", err)
	}
	machine := conversation.NewMachine(conversation.NewSessions(cfg.SessionTTL()), cities)
	resolver := &route.Resolver{
		Store:        st,
		Directions:   google.NewClient(cfg.GooglePlacesKey, cfg.ProviderTimeout(), cfg.SearchRadiusM),
		MaxWaypoints: cfg.MaxWaypoints,
	}

	var sender chat.Sender
	handle := func(userID int64, userName, text string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		reply := machine.Handle(userID, userName, text)
		for _, msg := range reply.Messages {
			if err := sender.Send(ctx, userID, msg); err != nil {
				log.Printf("bot: send to %d: %v", userID, err)
			}
		}
		if reply.Trip == nil {
			return
		}
		trip := reply.Trip
		resolved, err := resolver.Resolve(ctx, trip.Origin, trip.Destination)
		if err != nil {
			log.Printf("bot: resolve route %s: %v", trip.RouteID, err)
			if err := sender.Send(ctx, userID, "sorry, i couldn't find a drivable route for that trip"); err != nil {
				log.Printf("bot: send to %d: %v", userID, err)
			}
			return
		}
		trip.Summary = resolved.Summary
		trip.TotalDistance = resolved.TotalDistance
		trip.Waypoints = resolved.Waypoints
		payload, err := json.Marshal(trip)
		if err != nil {
			log.Printf("bot: marshal trip %s: %v", trip.RouteID, err)
			return
		}
		if err := bus.Publish(ctx, broker.TopicUserRequests, payload); err != nil {
			log.Printf("bot: publish trip %s: %v", trip.RouteID, err)
			if err := sender.Send(ctx, userID, "something went wrong on our side, try again in a bit"); err != nil {
				log.Printf("bot: send to %d: %v", userID, err)
			}
			return
		}
		metrics.MessagesPublished.WithLabelValues(broker.TopicUserRequests, "trip").Inc()
	}

	admin := app.AdminServer(cfg)
	go func() {
		log.Printf("bot: admin listening on %s", cfg.AdminAddr)
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("admin server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramToken != "" {
		tg, err := chat.NewTelegram(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		sender = tg
		log.Printf("bot: listening for telegram updates")
		tg.Listen(ctx, handle)
		return
	}

	gw := chat.NewGateway(handle)
	sender = gw
	srv := &http.Server{Addr: cfg.WSAddr, Handler: gw, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Printf("bot: websocket gateway on %s", cfg.WSAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("gateway: %v", err)
	}
}
