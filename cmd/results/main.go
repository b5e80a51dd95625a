package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"roadtrip/internal/app"
	"roadtrip/internal/broker"
	"roadtrip/internal/chat"
	"roadtrip/internal/config"
	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
	"roadtrip/internal/relay"
)

// logSender prints results to stdout when no Telegram token is configured.
type logSender struct{}

func (logSender) Send(_ context.Context, userID int64, text string) error {
	log.Printf("results: -> %d: %s", userID, text)
	return nil
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	bus, err := app.OpenBus(cfg)
	if err != nil {
		log.Fatalf("open bus: %v", err)
	}

	var sender chat.Sender = logSender{}
	if cfg.TelegramToken != "" {
		tg, err := chat.NewTelegram(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		sender = tg
	}

	deliver := func(ctx context.Context, payload []byte) error {
		var env model.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Printf("results: dropping malformed envelope: %v", err)
			return nil
		}
		for _, line := range relay.Render(env) {
			if err := sender.Send(ctx, env.UserID, line); err != nil {
				return err
			}
		}
		metrics.MessagesConsumed.WithLabelValues(broker.TopicResults, "delivered").Inc()
		return nil
	}

	admin := app.AdminServer(cfg)
	go func() {
		log.Printf("results: admin listening on %s", cfg.AdminAddr)
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("admin server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, _ := os.Hostname()
	log.Printf("results: consuming %s as %s/%s", broker.TopicResults, cfg.ConsumerGroup, host)
	if err := bus.Consume(ctx, broker.TopicResults, cfg.ConsumerGroup, host, deliver); err != nil && ctx.Err() == nil {
		log.Fatalf("consume: %v", err)
	}
}
