// Package backend opens the configured store and device transport.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/config"
	"github.com/ISim/Arduino/hydroponicsgcf/firestore"
	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/ISim/Arduino/hydroponicsgcf/iotcore"
	"github.com/ISim/Arduino/hydroponicsgcf/mqtt"
	"github.com/ISim/Arduino/hydroponicsgcf/sqlstore"
)

type Store interface {
	UpdateLatest(ctx context.Context, deviceID string, r hydroponics.Readings) error
	Archive(ctx context.Context, deviceID string, r hydroponics.Readings, window time.Duration) (bool, error)
	Latest(ctx context.Context, deviceID string) (*hydroponics.LatestState, error)
	AllLatest(ctx context.Context) ([]*hydroponics.LatestState, error)
	AddChat(ctx context.Context, deviceID string, chatID int64, username string) error
	AllChats(ctx context.Context, deviceID string) ([]int64, error)
	Close() error
}

type Transport interface {
	SendCommand(ctx context.Context, cmd *hydroponics.Command) error
	Close() error
}

func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := sqlstore.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("can't connect to postgres: %w", err)
		}
		repo, err := sqlstore.New(db, hydroponics.SystemClock)
		if err != nil {
			return nil, fmt.Errorf("postgres migration failed: %w", err)
		}
		return repo, nil
	case config.StoreFirestore:
		c, err := firestore.New(ctx, cfg.Registry.ProjectID, hydroponics.SystemClock)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func OpenTransport(ctx context.Context, cfg *config.Config) (Transport, error) {
	switch cfg.Transport {
	case config.TransportMQTT:
		c, err := mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			return nil, fmt.Errorf("can't connect to mqtt broker: %w", err)
		}
		return mqttTransport{c}, nil
	case config.TransportIoTCore:
		s, err := iotcore.New(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}

type mqttTransport struct {
	*mqtt.Client
}

func (t mqttTransport) Close() error {
	t.Client.Close()
	return nil
}
