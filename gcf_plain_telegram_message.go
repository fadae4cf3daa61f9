package hydroponicsgcf

import (
	"context"
	"encoding/json"
	"fmt"

	gps "cloud.google.com/go/pubsub"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

// PlainTelegramMessage delivers notifications published by the watchdog.
func PlainTelegramMessage(ctx context.Context, m gps.Message) error {
	var n hydroponics.Notification
	if err := json.Unmarshal(m.Data, &n); err != nil {
		return fmt.Errorf("can't unmarshal %q as %T: %w", string(m.Data), n, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	b, err := bot(cfg)
	if err != nil {
		return err
	}
	return b.Notify(ctx, n)
}
