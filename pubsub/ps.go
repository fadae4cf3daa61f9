package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

// AttrDeviceID is the message attribute the device bridge sets on telemetry.
const AttrDeviceID = "deviceId"

type PubSub struct {
	client            *pubsub.Client
	notificationTopic string
}

func New(ctx context.Context, projectID, notificationTopic string, opts ...option.ClientOption) (*PubSub, error) {
	c, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pub/sub client initialization error: %w", err)
	}
	if notificationTopic == "" {
		notificationTopic = hydroponics.NotificationTopic
	}
	return &PubSub{client: c, notificationTopic: notificationTopic}, nil
}

func (p *PubSub) Notify(ctx context.Context, n hydroponics.Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("can't marshal data for pub/sub: %w", err)
	}

	res := p.client.Topic(p.notificationTopic).Publish(ctx, &pubsub.Message{
		Data: raw,
	})

	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("publish to %q failed: %w", p.notificationTopic, err)
	}
	return nil
}

// ReceiveTelemetry pulls subscription until ctx is done. Every message is
// acked once handle returns, whatever happened to it.
func (p *PubSub) ReceiveTelemetry(ctx context.Context, subscription string, handle func(ctx context.Context, deviceID string, data []byte, receivedAt time.Time)) error {
	err := p.client.Subscription(subscription).Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		defer m.Ack()
		handle(ctx, m.Attributes[AttrDeviceID], m.Data, m.PublishTime.UTC())
	})
	if err != nil {
		return fmt.Errorf("receive from %q failed: %w", subscription, err)
	}
	return nil
}

func (p *PubSub) Close() error {
	return p.client.Close()
}
