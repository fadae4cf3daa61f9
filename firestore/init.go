package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

const (
	collectionDevices = "devices"
	collectionHistory = "history"
	collectionChats   = "chats"
)

// New connects to Firestore through the Firebase app of projectID.
func New(ctx context.Context, projectID string, clock hydroponics.Clock, opts ...option.ClientOption) (*Client, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("can't connect to firebase: %w", err)
	}
	c, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client initialization error: %w", err)
	}
	return NewWithClient(c, clock), nil
}

func NewWithClient(c *firestore.Client, clock hydroponics.Clock) *Client {
	if clock == nil {
		clock = hydroponics.SystemClock
	}
	return &Client{c: c, clock: clock}
}

func (c *Client) Close() error {
	return c.c.Close()
}
