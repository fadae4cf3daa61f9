package firestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

// Client stores latest state in devices/{id}, history in
// devices/{id}/history and operator chats in devices/{id}/chats.
type Client struct {
	c     *firestore.Client
	clock hydroponics.Clock
}

type Chat struct {
	Username  string
	CreatedAt time.Time
}

type readingsDoc struct {
	DeviceID    string    `firestore:"deviceId"`
	Initialized *bool     `firestore:"initialized,omitempty"`
	ElapsedDays *int      `firestore:"elapsedDays,omitempty"`
	TDSValue    *float64  `firestore:"tdsValue,omitempty"`
	PHValue     *float64  `firestore:"phValue,omitempty"`
	Temperature *float64  `firestore:"temperature,omitempty"`
	Humidity    *float64  `firestore:"humidity,omitempty"`
	TankLevel   *float64  `firestore:"tankLevel,omitempty"`
	Timestamp   time.Time `firestore:"timestamp"`
}

func wrapReadings(deviceID string, r hydroponics.Readings, t time.Time) readingsDoc {
	return readingsDoc{
		DeviceID:    deviceID,
		Initialized: r.Initialized,
		ElapsedDays: r.ElapsedDays,
		TDSValue:    r.TDSValue,
		PHValue:     r.PHValue,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		TankLevel:   r.TankLevel,
		Timestamp:   t,
	}
}

func (c *Client) device(deviceID string) *firestore.DocumentRef {
	return c.c.Collection(collectionDevices).Doc(deviceID)
}

// UpdateLatest replaces the device document. Readings missing from r are
// removed rather than merged.
func (c *Client) UpdateLatest(ctx context.Context, deviceID string, r hydroponics.Readings) error {
	_, err := c.device(deviceID).Set(ctx, wrapReadings(deviceID, r, c.clock.Now().UTC()))
	if err != nil {
		return fmt.Errorf("latest state for (%s) failed: %w", deviceID, err)
	}
	return nil
}

func (c *Client) Archive(ctx context.Context, deviceID string, r hydroponics.Readings, window time.Duration) (bool, error) {
	history := c.device(deviceID).Collection(collectionHistory)
	var archived bool

	err := c.c.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// transactions may be retried
		archived = false

		now := c.clock.Now().UTC()
		q := history.Where("timestamp", ">", hydroponics.WindowStart(now, window)).Limit(1)
		recent, err := tx.Documents(q).GetAll()
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			return nil
		}

		if err := tx.Create(history.NewDoc(), wrapReadings(deviceID, r, now)); err != nil {
			return err
		}
		archived = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("history archive for (%s) failed: %w", deviceID, err)
	}
	return archived, nil
}

// Latest returns nil without error for devices that never reported.
func (c *Client) Latest(ctx context.Context, deviceID string) (*hydroponics.LatestState, error) {
	d, err := c.device(deviceID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return unwrapLatest(d)
}

func (c *Client) AllLatest(ctx context.Context) ([]*hydroponics.LatestState, error) {
	devices, err := c.c.Collection(collectionDevices).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("can't retrieve devices: %w", err)
	}

	result := make([]*hydroponics.LatestState, 0, len(devices))
	for _, d := range devices {
		latest, err := unwrapLatest(d)
		if err != nil {
			return nil, err
		}
		result = append(result, latest)
	}
	return result, nil
}

// AddChat subscribes chatID to the device's alerts. The device document is
// created without timestamp when the device has not reported yet.
func (c *Client) AddChat(ctx context.Context, deviceID string, chatID int64, username string) error {
	_, err := c.device(deviceID).Set(ctx, map[string]interface{}{"deviceId": deviceID}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("device (%s) registration failed: %w", deviceID, err)
	}

	_, err = c.device(deviceID).Collection(collectionChats).Doc(strconv.FormatInt(chatID, 10)).Set(ctx, Chat{
		Username:  username,
		CreatedAt: c.clock.Now().UTC(),
	})
	return err
}

func (c *Client) AllChats(ctx context.Context, deviceID string) ([]int64, error) {
	iter := c.device(deviceID).Collection(collectionChats).Documents(ctx)
	defer iter.Stop()

	var chats []int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("retrieve all chats failed: %w", err)
		}
		if id, err := strconv.ParseInt(doc.Ref.ID, 10, 64); err == nil {
			chats = append(chats, id)
		}
	}
	return chats, nil
}

func unwrapLatest(d *firestore.DocumentSnapshot) (*hydroponics.LatestState, error) {
	var doc readingsDoc
	if err := d.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("latest state decoding failed: %w", err)
	}

	return &hydroponics.LatestState{
		DeviceID: d.Ref.ID,
		Readings: hydroponics.Readings{
			Initialized: doc.Initialized,
			ElapsedDays: doc.ElapsedDays,
			TDSValue:    doc.TDSValue,
			PHValue:     doc.PHValue,
			Temperature: doc.Temperature,
			Humidity:    doc.Humidity,
			TankLevel:   doc.TankLevel,
		},
		Timestamp: doc.Timestamp,
	}, nil
}
