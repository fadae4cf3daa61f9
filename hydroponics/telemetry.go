package hydroponics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTelemetry = errors.New("invalid telemetry payload")

// Readings is the subset of a telemetry payload the gateway keeps. Fields the
// device did not send stay nil.
type Readings struct {
	Initialized *bool    `json:"initialized,omitempty"`
	ElapsedDays *int     `json:"elapsedDays,omitempty"`
	TDSValue    *float64 `json:"tdsValue,omitempty"`
	PHValue     *float64 `json:"phValue,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	TankLevel   *float64 `json:"tankLevel,omitempty"`
}

type TelemetryEvent struct {
	DeviceID   string
	Readings   Readings
	ReceivedAt time.Time
	// Mistyped lists known fields whose value had the wrong JSON type. They
	// are left absent in Readings.
	Mistyped []string
}

type LatestState struct {
	DeviceID  string    `json:"deviceId"`
	Readings  Readings  `json:"readings"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryRecord struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Readings  Readings  `json:"readings"`
	Timestamp time.Time `json:"timestamp"`
}

// DecodeTelemetry extracts Readings from a JSON object payload. Unknown
// fields are ignored, missing and mistyped ones stay absent. Only a payload
// that is not a JSON object is rejected.
func DecodeTelemetry(deviceID string, data []byte, receivedAt time.Time) (*TelemetryEvent, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: %q: not a JSON object", ErrInvalidTelemetry, string(data))
	}

	ev := &TelemetryEvent{
		DeviceID:   deviceID,
		ReceivedAt: receivedAt,
	}
	ev.Readings = Readings{
		Initialized: field[bool](fields, "initialized", &ev.Mistyped),
		ElapsedDays: field[int](fields, "elapsedDays", &ev.Mistyped),
		TDSValue:    field[float64](fields, "tdsValue", &ev.Mistyped),
		PHValue:     field[float64](fields, "phValue", &ev.Mistyped),
		Temperature: field[float64](fields, "temperature", &ev.Mistyped),
		Humidity:    field[float64](fields, "humidity", &ev.Mistyped),
		TankLevel:   field[float64](fields, "tankLevel", &ev.Mistyped),
	}
	return ev, nil
}

func field[T any](fields map[string]json.RawMessage, name string, mistyped *[]string) *T {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		*mistyped = append(*mistyped, name)
		return nil
	}
	return v
}

func (r Readings) String() string {
	f := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f", *v)
	}
	return fmt.Sprintf("TDS %s ppm, pH %s, %s °C, humidity %s %%, tank %s %%",
		f(r.TDSValue), f(r.PHValue), f(r.Temperature), f(r.Humidity), f(r.TankLevel))
}
