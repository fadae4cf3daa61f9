package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
)

const (
	qos            = 1
	connectTimeout = 15 * time.Second
)

// Client is a device transport over an MQTT broker: commands go to
// /devices/{id}/commands, telemetry arrives on /devices/{id}/events.
type Client struct {
	cli mqtt.Client
}

func Connect(brokerURL, clientID string) (*Client, error) {
	opts := mqtt.NewClientOptions()
	url := strings.TrimSpace(brokerURL)
	if strings.HasPrefix(url, "mqtt://") {
		url = "tcp://" + strings.TrimPrefix(url, "mqtt://")
	}
	opts.AddBroker(url)
	if strings.TrimSpace(clientID) == "" {
		clientID = "hydroponics-gateway-" + time.Now().Format("150405.000")
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	if strings.HasPrefix(url, "ssl://") || strings.HasPrefix(url, "tls://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	}
	opts.OnConnect = func(_ mqtt.Client) {
		slog.Info("mqtt connected", "broker", url)
	}

	return connect(mqtt.NewClient(opts), url, connectTimeout)
}

// connect fails unless the broker answered within timeout. With connect retry
// enabled the token stays pending while the broker is unreachable.
func connect(c mqtt.Client, url string, timeout time.Duration) (*Client, error) {
	tok := c.Connect()
	if !tok.WaitTimeout(timeout) {
		c.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s timed out", url)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s failed: %w", url, err)
	}
	return &Client{cli: c}, nil
}

func (c *Client) SendCommand(ctx context.Context, cmd *hydroponics.Command) error {
	deviceID, err := hydroponics.DeviceIDFromPath(cmd.Name)
	if err != nil {
		return err
	}
	data, err := cmd.Data()
	if err != nil {
		return err
	}
	return wait(ctx, c.cli.Publish(hydroponics.CommandTopic(deviceID), qos, false, data))
}

// SubscribeEvents delivers the telemetry of every device to handler.
func (c *Client) SubscribeEvents(handler func(deviceID string, payload []byte, receivedAt time.Time)) error {
	tok := c.cli.Subscribe(hydroponics.EventsTopicFilter, qos, func(_ mqtt.Client, msg mqtt.Message) {
		deviceID, err := hydroponics.ParseEventTopic(msg.Topic())
		if err != nil {
			slog.Warn("mqtt telemetry topic parse failed", "topic", msg.Topic(), "error", err)
			return
		}
		handler(deviceID, msg.Payload(), time.Now().UTC())
	})
	tok.Wait()
	if err := tok.Error(); err != nil {
		return err
	}
	slog.Info("mqtt subscribed", "topic", hydroponics.EventsTopicFilter)
	return nil
}

func (c *Client) Close() {
	if c == nil || c.cli == nil {
		return
	}
	c.cli.Disconnect(1000)
}

func wait(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
