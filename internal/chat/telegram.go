package chat

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram is the production chat surface.
type Telegram struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api}, nil
}

func (t *Telegram) Send(ctx context.Context, userID int64, text string) error {
	_, err := t.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

// Listen pulls updates and hands each text message to h. It returns when ctx
// is cancelled.
func (t *Telegram) Listen(ctx context.Context, h Handler) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.api.GetUpdatesChan(cfg)
	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Message == nil || u.Message.From == nil {
				continue
			}
			h(u.Message.From.ID, u.Message.From.UserName, u.Message.Text)
		}
	}
}
