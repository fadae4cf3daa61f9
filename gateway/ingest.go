package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/ISim/Arduino/hydroponicsgcf/metrics"
)

type ArchiveResult int

const (
	Skipped ArchiveResult = iota
	Archived
)

func (r ArchiveResult) String() string {
	if r == Archived {
		return "archived"
	}
	return "skipped"
}

// Ingestor records telemetry events: the device's latest state is always
// overwritten, a history record is appended at most once per window.
type Ingestor struct {
	Store interface {
		UpdateLatest(ctx context.Context, deviceID string, r hydroponics.Readings) error
		// Archive appends a history record unless the device already has one
		// younger than window. Check and append are atomic.
		Archive(ctx context.Context, deviceID string, r hydroponics.Readings, window time.Duration) (bool, error)
	}
	Window time.Duration
}

// IngestMessage decodes a raw telemetry payload and ingests it. Payloads that
// are not a JSON object are logged and dropped, mistyped fields are logged
// and left absent.
func (i *Ingestor) IngestMessage(ctx context.Context, deviceID string, data []byte, receivedAt time.Time) {
	ev, err := hydroponics.DecodeTelemetry(deviceID, data, receivedAt)
	if err != nil {
		slog.Warn("telemetry dropped", "device_id", deviceID, "error", err)
		return
	}
	if len(ev.Mistyped) > 0 {
		slog.Warn("telemetry fields ignored", "device_id", deviceID, "fields", ev.Mistyped)
	}
	i.Ingest(ctx, ev)
}

// Ingest runs the latest-state update and the history decision independently.
// Failures end up in the log only, the event source is never asked to redeliver.
func (i *Ingestor) Ingest(ctx context.Context, ev *hydroponics.TelemetryEvent) {
	if err := i.UpdateLatest(ctx, ev); err != nil {
		slog.Error("latest state update failed", "device_id", ev.DeviceID, "error", err)
	}

	res, err := i.MaybeArchive(ctx, ev)
	if err != nil {
		slog.Error("history archive failed", "device_id", ev.DeviceID, "error", err)
		return
	}
	slog.Debug("history decision", "device_id", ev.DeviceID, "result", res.String())
}

func (i *Ingestor) UpdateLatest(ctx context.Context, ev *hydroponics.TelemetryEvent) error {
	if err := i.Store.UpdateLatest(ctx, ev.DeviceID, ev.Readings); err != nil {
		metrics.LatestWritesTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	metrics.LatestWritesTotal.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

func (i *Ingestor) MaybeArchive(ctx context.Context, ev *hydroponics.TelemetryEvent) (ArchiveResult, error) {
	archived, err := i.Store.Archive(ctx, ev.DeviceID, ev.Readings, i.window())
	if err != nil {
		metrics.HistoryTotal.WithLabelValues(metrics.ResultError).Inc()
		return Skipped, err
	}

	res := Skipped
	if archived {
		res = Archived
	}
	metrics.HistoryTotal.WithLabelValues(res.String()).Inc()
	return res, nil
}

func (i *Ingestor) window() time.Duration {
	if i.Window <= 0 {
		return hydroponics.DedupWindow
	}
	return i.Window
}
