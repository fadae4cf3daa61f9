package firestore

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

// newEmulatorClient needs a running emulator, e.g.
// gcloud emulators firestore start --host-port=localhost:8681
func newEmulatorClient(t *testing.T, clock hydroponics.Clock) (*Client, string) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	fc, err := firestore.NewClient(ctx, "hydroponics-test")
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { _ = fc.Close() })

	deviceID := strings.NewReplacer("/", "-", " ", "-").Replace(t.Name()) + "-" + time.Now().Format("150405.000000")
	return NewWithClient(fc, clock), deviceID
}

func f64(v float64) *float64 { return &v }

func TestUpdateLatestOverwrites(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	c, deviceID := newEmulatorClient(t, clock)
	ctx := context.Background()

	if err := c.UpdateLatest(ctx, deviceID, hydroponics.Readings{TDSValue: f64(650), PHValue: f64(6.1)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.UpdateLatest(ctx, deviceID, hydroponics.Readings{Temperature: f64(27.5)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	latest, err := c.Latest(ctx, deviceID)
	if err != nil || latest == nil {
		t.Fatalf("expected latest state, got %v, %v", latest, err)
	}
	if latest.Readings.TDSValue != nil {
		t.Errorf("expected tdsValue to be gone, got %v", *latest.Readings.TDSValue)
	}
	if latest.Readings.Temperature == nil || *latest.Readings.Temperature != 27.5 {
		t.Errorf("expected temperature 27.5, got %v", latest.Readings.Temperature)
	}
	if !latest.Timestamp.Equal(clock.now) {
		t.Errorf("expected timestamp %s, got %s", clock.now, latest.Timestamp)
	}
}

func TestArchiveWindow(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &testClock{now: t0}
	c, deviceID := newEmulatorClient(t, clock)
	ctx := context.Background()

	for _, s := range []struct {
		at       time.Duration
		archived bool
	}{
		{0, true},
		{5 * time.Minute, false},
		{65 * time.Minute, true},
	} {
		clock.now = t0.Add(s.at)
		archived, err := c.Archive(ctx, deviceID, hydroponics.Readings{TankLevel: f64(80)}, hydroponics.DedupWindow)
		if err != nil {
			t.Fatalf("archive at +%s: %v", s.at, err)
		}
		if archived != s.archived {
			t.Errorf("at +%s expected archived=%v, got %v", s.at, s.archived, archived)
		}
	}
}

func TestChats(t *testing.T) {
	c, deviceID := newEmulatorClient(t, nil)
	ctx := context.Background()

	if err := c.AddChat(ctx, deviceID, 1001, "grower"); err != nil {
		t.Fatalf("add chat: %v", err)
	}
	chats, err := c.AllChats(ctx, deviceID)
	if err != nil {
		t.Fatalf("chats: %v", err)
	}
	if len(chats) != 1 || chats[0] != 1001 {
		t.Errorf("expected [1001], got %v", chats)
	}

	latest, err := c.Latest(ctx, deviceID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || !latest.Timestamp.IsZero() {
		t.Errorf("expected registered device without timestamp, got %+v", latest)
	}
}
