package hydroponicsgcf

import (
	"log/slog"
	"net/http"

	"github.com/ISim/Arduino/hydroponicsgcf/gateway"
)

// HTTPSendCommand forwards the posted JSON object as a command to the device
// named by its deviceId field.
func HTTPSendCommand(w http.ResponseWriter, r *http.Request) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	t, err := transport(cfg)
	if err != nil {
		slog.Error("can't initialize device transport", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	d := &gateway.Dispatcher{
		Registry:  cfg.Registry,
		Transport: t,
	}
	gateway.CommandHandler(d).ServeHTTP(w, r)
}
