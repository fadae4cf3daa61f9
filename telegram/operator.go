package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

// URLParamKey carries the webhook secret registered with Telegram.
const URLParamKey = "k"

type request interface {
	FromUser() string
	ChatID() int64
	Command() (string, string)
}

// Operator serves the operator chat: device registration, status and commands.
type Operator struct {
	Replier interface {
		Reply(chatID int64, msg string) error
	}
	Storage interface {
		AddChat(ctx context.Context, deviceID string, chatID int64, username string) error
		Latest(ctx context.Context, deviceID string) (*hydroponics.LatestState, error)
	}
	Dispatcher interface {
		Dispatch(ctx context.Context, deviceID string, payload interface{}) error
	}
}

// WebhookHandler answers Telegram right away and then processes the update.
func (o *Operator) WebhookHandler(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if k := r.URL.Query().Get(URLParamKey); k == "" || k != key {
			slog.Warn("unauthorized telegram request", "host", r.Host)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		w.WriteHeader(http.StatusNoContent)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		u, err := NewUpdate(r.Body)
		if err != nil {
			slog.Warn("telegram update error", "error", err)
			return
		}
		if err := o.Handle(ctx, u); err != nil {
			slog.Error("telegram message processing failed", "error", err)
		}
	}
}

func (o *Operator) Handle(ctx context.Context, rq request) error {
	cmd, argLine := rq.Command()

	switch cmd {
	case "register":
		return o.cmdRegister(ctx, rq, argLine)
	case "status":
		return o.cmdStatus(ctx, rq, argLine)
	case "command":
		return o.cmdCommand(ctx, rq, argLine)
	}
	return nil
}

func deviceArg(argLine string) string {
	return strings.Trim(argLine, " \n\t\r\"")
}

func (o *Operator) cmdRegister(ctx context.Context, rq request, argLine string) error {
	deviceID := deviceArg(argLine)
	if deviceID == "" {
		return o.Replier.Reply(rq.ChatID(), "usage: /register <deviceId>")
	}

	if err := o.Storage.AddChat(ctx, deviceID, rq.ChatID(), rq.FromUser()); err != nil {
		return err
	}
	return o.Replier.Reply(rq.ChatID(), fmt.Sprintf("✅ alerts of %s will be sent here", deviceID))
}

func (o *Operator) cmdStatus(ctx context.Context, rq request, argLine string) error {
	deviceID := deviceArg(argLine)
	if deviceID == "" {
		return o.Replier.Reply(rq.ChatID(), "usage: /status <deviceId>")
	}

	latest, err := o.Storage.Latest(ctx, deviceID)
	if err != nil {
		return err
	}
	if latest == nil {
		return o.Replier.Reply(rq.ChatID(), fmt.Sprintf("unknown device %s", deviceID))
	}
	if latest.Timestamp.IsZero() {
		return o.Replier.Reply(rq.ChatID(), fmt.Sprintf("%s has not reported yet", deviceID))
	}
	return o.Replier.Reply(rq.ChatID(), fmt.Sprintf("%s %s\n%s",
		deviceID, latest.Timestamp.Format("2.1. 15:04"), latest.Readings))
}

func (o *Operator) cmdCommand(ctx context.Context, rq request, argLine string) error {
	fields := strings.SplitN(strings.TrimSpace(argLine), " ", 2)
	if len(fields) != 2 || !json.Valid([]byte(fields[1])) {
		return o.Replier.Reply(rq.ChatID(), "usage: /command <deviceId> <json>")
	}
	deviceID := fields[0]

	if err := o.Dispatcher.Dispatch(ctx, deviceID, json.RawMessage(fields[1])); err != nil {
		return o.Replier.Reply(rq.ChatID(), fmt.Sprintf("‼️ command for %s failed", deviceID))
	}
	return o.Replier.Reply(rq.ChatID(), fmt.Sprintf("✅ command sent to %s", deviceID))
}
