// Package hydroponicsgcf holds the Google Cloud Functions of the hydroponics
// gateway. Clients are created on first use and shared by later invocations
// of the same instance.
package hydroponicsgcf

import (
	"context"
	"sync"

	"github.com/ISim/Arduino/hydroponicsgcf/backend"
	"github.com/ISim/Arduino/hydroponicsgcf/config"
	"github.com/ISim/Arduino/hydroponicsgcf/logging"
	"github.com/ISim/Arduino/hydroponicsgcf/metrics"
	"github.com/ISim/Arduino/hydroponicsgcf/pubsub"
	"github.com/ISim/Arduino/hydroponicsgcf/telegram"
)

// lazy keeps the first successfully created value. Failed attempts are
// retried by the next invocation.
type lazy[T any] struct {
	mu  sync.Mutex
	v   T
	set bool
}

func (l *lazy[T]) get(create func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set {
		return l.v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	l.v, l.set = v, true
	return v, nil
}

var (
	cfgCache       lazy[*config.Config]
	storeCache     lazy[backend.Store]
	transportCache lazy[backend.Transport]
	pubsubCache    lazy[*pubsub.PubSub]
	botCache       lazy[*telegram.Bot]
)

func loadConfig() (*config.Config, error) {
	return cfgCache.get(func() (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logging.Setup(cfg.LogLevel, cfg.LogFormat)
		metrics.Register()
		return cfg, nil
	})
}

func store(cfg *config.Config) (backend.Store, error) {
	return storeCache.get(func() (backend.Store, error) {
		return backend.OpenStore(context.Background(), cfg)
	})
}

func transport(cfg *config.Config) (backend.Transport, error) {
	return transportCache.get(func() (backend.Transport, error) {
		return backend.OpenTransport(context.Background(), cfg)
	})
}

func publisher(cfg *config.Config) (*pubsub.PubSub, error) {
	return pubsubCache.get(func() (*pubsub.PubSub, error) {
		return pubsub.New(context.Background(), cfg.Registry.ProjectID, cfg.NotificationTopic)
	})
}

func bot(cfg *config.Config) (*telegram.Bot, error) {
	return botCache.get(func() (*telegram.Bot, error) {
		return telegram.NewBot(cfg.TelegramToken)
	})
}
