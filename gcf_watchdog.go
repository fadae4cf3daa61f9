package hydroponicsgcf

import (
	"context"
	"fmt"

	gps "cloud.google.com/go/pubsub"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/ISim/Arduino/hydroponicsgcf/watchdog"
)

// Watchdog is triggered by Cloud Scheduler. The message payload is ignored.
func Watchdog(ctx context.Context, m gps.Message) error {
	_ = m

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store(cfg)
	if err != nil {
		return fmt.Errorf("can't initialize store: %w", err)
	}

	pub, err := publisher(cfg)
	if err != nil {
		return err
	}

	w := &watchdog.Watchdog{
		StaleAfter:   cfg.StaleAfter,
		LowTankLevel: cfg.LowTankLevel,
		Clock:        hydroponics.SystemClock,
		Storage:      s,
		Publish:      pub,
	}
	return w.Run(ctx)
}
