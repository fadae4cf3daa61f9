package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const maxCommandBody = 64 << 10

type commandDTO struct {
	DeviceID string `json:"deviceId"`
}

// CommandHandler accepts a JSON object naming the target deviceId. The whole
// object is forwarded to the device as the command payload.
func CommandHandler(d interface {
	Dispatch(ctx context.Context, deviceID string, payload interface{}) error
}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "not supported", http.StatusMethodNotAllowed)
			return
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBody))
		if err != nil {
			http.Error(w, "payload error", http.StatusBadRequest)
			return
		}

		var rq commandDTO
		if err := json.Unmarshal(raw, &rq); err != nil {
			slog.Warn("command payload decoding error", "error", err)
			http.Error(w, "payload error", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(rq.DeviceID) == "" {
			http.Error(w, "deviceId required", http.StatusBadRequest)
			return
		}

		if err := d.Dispatch(r.Context(), rq.DeviceID, json.RawMessage(raw)); err != nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(http.StatusText(http.StatusOK)))
	}
}
