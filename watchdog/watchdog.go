package watchdog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/ISim/Arduino/hydroponicsgcf/metrics"
)

const (
	DefaultStaleAfter   = 2 * time.Hour
	DefaultLowTankLevel = 20.0
)

// Watchdog alerts the operator chats of devices that stopped reporting or
// run low on nutrient solution.
type Watchdog struct {
	StaleAfter   time.Duration
	LowTankLevel float64
	Clock        hydroponics.Clock

	Storage interface {
		AllLatest(ctx context.Context) ([]*hydroponics.LatestState, error)
		AllChats(ctx context.Context, deviceID string) ([]int64, error)
	}
	Publish interface {
		Notify(ctx context.Context, n hydroponics.Notification) error
	}
}

func (w *Watchdog) Run(ctx context.Context) error {
	now := hydroponics.SystemClock.Now()
	if w.Clock != nil {
		now = w.Clock.Now()
	}
	staleAfter := w.StaleAfter
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	limit := now.Add(-staleAfter)

	devices, err := w.Storage.AllLatest(ctx)
	if err != nil {
		return fmt.Errorf("can't retrieve devices list: %w", err)
	}

	var errs []error
	for _, device := range devices {
		var (
			kind string
			msg  string
		)

		switch {
		case device.Timestamp.IsZero():
			kind, msg = "never_reported", fmt.Sprintf("⚠️ device %s has not reported yet", device.DeviceID)
		case device.Timestamp.Before(limit):
			kind, msg = "stale", fmt.Sprintf("⚠️ device %s has not reported since %s",
				device.DeviceID, device.Timestamp.Format("2.1. 15:04"))
		case device.Readings.TankLevel != nil && *device.Readings.TankLevel < w.lowTankLevel():
			kind, msg = "low_tank", fmt.Sprintf("⚠️ device %s has low tank level %.0f %%",
				device.DeviceID, *device.Readings.TankLevel)
		default:
			continue
		}

		if err := w.alert(ctx, device.DeviceID, msg); err != nil {
			errs = append(errs, fmt.Errorf("can't publish %s alert for device %s: %w", kind, device.DeviceID, err))
			continue
		}
		metrics.WatchdogAlertsTotal.WithLabelValues(kind).Inc()
	}

	return errors.Join(errs...)
}

func (w *Watchdog) alert(ctx context.Context, deviceID, msg string) error {
	chats, err := w.Storage.AllChats(ctx, deviceID)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		return nil
	}
	return w.Publish.Notify(ctx, hydroponics.Notification{Chats: chats, Message: msg})
}

func (w *Watchdog) lowTankLevel() float64 {
	if w.LowTankLevel <= 0 {
		return DefaultLowTankLevel
	}
	return w.LowTankLevel
}
