package telegram

import (
	"context"
	"fmt"

	tba "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

type Bot struct {
	api *tba.BotAPI
}

func NewBot(token string) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token not configured")
	}
	api, err := tba.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot API initialization error: %w", err)
	}
	return &Bot{api: api}, nil
}

// Send delivers msg to all chats and returns the first error.
func (b *Bot) Send(chats []int64, msg string) error {
	var err error

	for _, c := range chats {
		_, e := b.api.Send(tba.NewMessage(c, msg))
		if err == nil {
			err = e
		}
	}
	return err
}

func (b *Bot) Reply(chatID int64, msg string) error {
	return b.Send([]int64{chatID}, msg)
}

func (b *Bot) Notify(_ context.Context, n hydroponics.Notification) error {
	return b.Send(n.Chats, n.Message)
}
