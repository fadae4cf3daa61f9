package hydroponicsgcf

import (
	"context"
	"log/slog"
	"time"

	gps "cloud.google.com/go/pubsub"

	"github.com/ISim/Arduino/hydroponicsgcf/gateway"
	"github.com/ISim/Arduino/hydroponicsgcf/pubsub"
)

// PubSubEventData ingests one device telemetry message. It never returns an
// error so Pub/Sub does not redeliver.
func PubSubEventData(ctx context.Context, m gps.Message) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		return nil
	}

	s, err := store(cfg)
	if err != nil {
		slog.Error("can't initialize store", "error", err)
		return nil
	}

	in := &gateway.Ingestor{
		Store:  s,
		Window: cfg.DedupWindow,
	}
	in.IngestMessage(ctx, m.Attributes[pubsub.AttrDeviceID], m.Data, receivedAt(m))
	return nil
}

func receivedAt(m gps.Message) time.Time {
	if m.PublishTime.IsZero() {
		return time.Now().UTC()
	}
	return m.PublishTime.UTC()
}
