package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ISim/Arduino/hydroponicsgcf/backend"
	"github.com/ISim/Arduino/hydroponicsgcf/config"
	"github.com/ISim/Arduino/hydroponicsgcf/gateway"
	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/ISim/Arduino/hydroponicsgcf/logging"
	"github.com/ISim/Arduino/hydroponicsgcf/metrics"
	"github.com/ISim/Arduino/hydroponicsgcf/mqtt"
	"github.com/ISim/Arduino/hydroponicsgcf/pubsub"
	"github.com/ISim/Arduino/hydroponicsgcf/telegram"
	"github.com/ISim/Arduino/hydroponicsgcf/watchdog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	metrics.Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := backend.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("store open failed", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	transport, err := backend.OpenTransport(ctx, cfg)
	if err != nil {
		slog.Error("transport open failed", "transport", cfg.Transport, "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	var ps *pubsub.PubSub
	if cfg.TelemetrySource == config.SourcePubSub || cfg.TelegramToken == "" {
		ps, err = pubsub.New(ctx, cfg.Registry.ProjectID, cfg.NotificationTopic)
		if err != nil {
			slog.Error("pub/sub init failed", "error", err)
			os.Exit(1)
		}
		defer ps.Close()
	}

	dispatcher := &gateway.Dispatcher{Registry: cfg.Registry, Transport: transport}
	ingestor := &gateway.Ingestor{Store: store, Window: cfg.DedupWindow}

	switch cfg.TelemetrySource {
	case config.SourceMQTT:
		mq, err := mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID+"-telemetry")
		if err != nil {
			slog.Error("mqtt connect failed", "error", err)
			os.Exit(1)
		}
		defer mq.Close()
		if err := mq.SubscribeEvents(func(deviceID string, payload []byte, receivedAt time.Time) {
			ingestor.IngestMessage(ctx, deviceID, payload, receivedAt)
		}); err != nil {
			slog.Error("mqtt subscribe failed", "error", err)
			os.Exit(1)
		}
	case config.SourcePubSub:
		go func() {
			slog.Info("telemetry subscription started", "subscription", cfg.Subscription)
			if err := ps.ReceiveTelemetry(ctx, cfg.Subscription, ingestor.IngestMessage); err != nil {
				slog.Error("telemetry subscription stopped", "error", err)
				cancel()
			}
		}()
	}

	var (
		notifier interface {
			Notify(ctx context.Context, n hydroponics.Notification) error
		} = ps
		webhook http.Handler
	)
	if cfg.TelegramToken != "" {
		b, err := telegram.NewBot(cfg.TelegramToken)
		if err != nil {
			slog.Error("telegram bot init failed", "error", err)
			os.Exit(1)
		}
		notifier = b
		op := &telegram.Operator{Replier: b, Storage: store, Dispatcher: dispatcher}
		webhook = op.WebhookHandler(cfg.TelegramWebhookKey)
	}

	wd := &watchdog.Watchdog{
		StaleAfter:   cfg.StaleAfter,
		LowTankLevel: cfg.LowTankLevel,
		Clock:        hydroponics.SystemClock,
		Storage:      store,
		Publish:      notifier,
	}
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.WatchdogSchedule, func() {
		if err := wd.Run(ctx); err != nil {
			slog.Error("watchdog run failed", "error", err)
		}
	}); err != nil {
		slog.Error("invalid watchdog schedule", "schedule", cfg.WatchdogSchedule, "error", err)
		os.Exit(1)
	}
	sched.Start()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newRouter(gateway.CommandHandler(dispatcher), webhook),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("gateway listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			cancel()
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
		slog.Info("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	<-sched.Stop().Done()
	cancel()
}
