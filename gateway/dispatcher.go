package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/ISim/Arduino/hydroponicsgcf/metrics"
)

// ErrDispatchFailed is the only failure a command caller gets to see.
var ErrDispatchFailed = errors.New("command dispatch failed")

// Dispatcher forwards operator commands to single devices. It never retries;
// redelivery is up to the operator.
type Dispatcher struct {
	Registry  hydroponics.Registry
	Transport interface {
		SendCommand(ctx context.Context, cmd *hydroponics.Command) error
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, deviceID string, payload interface{}) error {
	name, err := d.Registry.DevicePath(deviceID)
	if err != nil {
		return d.fail("command rejected", deviceID, err)
	}

	cmd, err := hydroponics.EncodeCommand(name, payload)
	if err != nil {
		return d.fail("command encoding failed", deviceID, err)
	}

	slog.Info("sending command", "name", cmd.Name, "binary_data", cmd.BinaryData)

	if err := d.Transport.SendCommand(ctx, cmd); err != nil {
		return d.fail("send command failed", deviceID, err)
	}

	metrics.CommandsTotal.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

func (d *Dispatcher) fail(msg, deviceID string, err error) error {
	slog.Error(msg, "device_id", deviceID, "error", err)
	metrics.CommandsTotal.WithLabelValues(metrics.ResultError).Inc()
	return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
}
