package telegram

import (
	"encoding/json"
	"fmt"
	"io"

	tba "github.com/go-telegram-bot-api/telegram-bot-api"
)

type Update struct {
	u *tba.Update
}

func NewUpdate(r io.Reader) (*Update, error) {
	var u tba.Update

	if err := json.NewDecoder(r).Decode(&u); err != nil {
		return nil, fmt.Errorf("bot update unmarshal error: %w", err)
	}

	return &Update{
		u: &u,
	}, nil
}

// Command returns the bot command and the rest of the line. Both are empty
// when the update is not a command.
func (u *Update) Command() (string, string) {
	if u.u.Message == nil {
		return "", ""
	}
	return u.u.Message.Command(), u.u.Message.CommandArguments()
}

func (u *Update) FromUser() string {
	if u.u.Message == nil || u.u.Message.Chat == nil {
		return ""
	}
	return u.u.Message.Chat.UserName
}

func (u *Update) ChatID() int64 {
	if u.u.Message == nil || u.u.Message.Chat == nil {
		return 0
	}
	return u.u.Message.Chat.ID
}
