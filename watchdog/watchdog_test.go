package watchdog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeStorage struct {
	devices []*hydroponics.LatestState
	chats   map[string][]int64
}

func (f *fakeStorage) AllLatest(context.Context) ([]*hydroponics.LatestState, error) {
	return f.devices, nil
}

func (f *fakeStorage) AllChats(_ context.Context, deviceID string) ([]int64, error) {
	return f.chats[deviceID], nil
}

type fakePublisher struct {
	sent []hydroponics.Notification
	err  error
}

func (f *fakePublisher) Notify(_ context.Context, n hydroponics.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func level(v float64) *float64 { return &v }

func newWatchdog(devices ...*hydroponics.LatestState) (*Watchdog, *fakePublisher) {
	chats := map[string][]int64{}
	for _, d := range devices {
		chats[d.DeviceID] = []int64{1001}
	}
	p := &fakePublisher{}
	return &Watchdog{
		StaleAfter:   time.Hour,
		LowTankLevel: 20,
		Clock:        hydroponics.ClockFunc(func() time.Time { return now }),
		Storage:      &fakeStorage{devices: devices, chats: chats},
		Publish:      p,
	}, p
}

func TestRunAlerts(t *testing.T) {
	w, p := newWatchdog(
		&hydroponics.LatestState{DeviceID: "healthy", Readings: hydroponics.Readings{TankLevel: level(80)}, Timestamp: now.Add(-5 * time.Minute)},
		&hydroponics.LatestState{DeviceID: "silent", Timestamp: now.Add(-3 * time.Hour)},
		&hydroponics.LatestState{DeviceID: "dry", Readings: hydroponics.Readings{TankLevel: level(10)}, Timestamp: now.Add(-5 * time.Minute)},
		&hydroponics.LatestState{DeviceID: "new"},
	)

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(p.sent) != 3 {
		t.Fatalf("expected 3 alerts, got %d: %+v", len(p.sent), p.sent)
	}
	for i, exp := range []string{"silent has not reported since", "dry has low tank level 10", "new has not reported yet"} {
		if !strings.Contains(p.sent[i].Message, exp) {
			t.Errorf("alert %d: expected %q in %q", i, exp, p.sent[i].Message)
		}
	}
}

func TestRunSkipsDevicesWithoutChats(t *testing.T) {
	w, p := newWatchdog()
	w.Storage = &fakeStorage{devices: []*hydroponics.LatestState{{DeviceID: "silent", Timestamp: now.Add(-3 * time.Hour)}}}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(p.sent) != 0 {
		t.Fatalf("expected no alerts, got %+v", p.sent)
	}
}

func TestRunReportsPublishErrors(t *testing.T) {
	w, p := newWatchdog(
		&hydroponics.LatestState{DeviceID: "silent", Timestamp: now.Add(-3 * time.Hour)},
		&hydroponics.LatestState{DeviceID: "new"},
	)
	p.err = errors.New("publish failed")

	err := w.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "silent") || !strings.Contains(err.Error(), "new") {
		t.Errorf("expected both devices in error, got %v", err)
	}
}
