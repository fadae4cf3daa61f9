package hydroponicsgcf

import (
	"log/slog"
	"net/http"

	"github.com/ISim/Arduino/hydroponicsgcf/gateway"
	"github.com/ISim/Arduino/hydroponicsgcf/telegram"
)

// TelegramHTTPReceiver is the webhook of the operator bot.
func TelegramHTTPReceiver(w http.ResponseWriter, r *http.Request) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s, err := store(cfg)
	if err != nil {
		slog.Error("can't initialize store", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	b, err := bot(cfg)
	if err != nil {
		slog.Error("can't initialize telegram bot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	t, err := transport(cfg)
	if err != nil {
		slog.Error("can't initialize device transport", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	op := &telegram.Operator{
		Replier:    b,
		Storage:    s,
		Dispatcher: &gateway.Dispatcher{Registry: cfg.Registry, Transport: t},
	}
	op.WebhookHandler(cfg.TelegramWebhookKey).ServeHTTP(w, r)
}
