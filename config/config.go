package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "HYDRO"
	envConfigFile = "HYDRO_CONFIG"
)

const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"

	TransportIoTCore = "iotcore"
	TransportMQTT    = "mqtt"

	SourcePubSub = "pubsub"
	SourceMQTT   = "mqtt"
)

type Config struct {
	Registry    hydroponics.Registry
	DedupWindow time.Duration

	LogLevel  string
	LogFormat string
	HTTPPort  string

	Store       string
	PostgresDSN string

	Transport       string
	TelemetrySource string
	Subscription    string

	MQTTBrokerURL string
	MQTTClientID  string

	NotificationTopic  string
	TelegramToken      string
	TelegramWebhookKey string

	WatchdogSchedule string
	StaleAfter       time.Duration
	LowTankLevel     float64
}

// Load reads the configuration from HYDRO_* environment variables and, when
// HYDRO_CONFIG names a file, from that YAML file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("project_id", "hydroponics-378311")
	v.SetDefault("region", "asia-east1")
	v.SetDefault("registry_id", "hydroponics")
	v.SetDefault("dedup_window", hydroponics.DedupWindow.String())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("http_port", "8080")
	v.SetDefault("store", StoreFirestore)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("transport", TransportIoTCore)
	v.SetDefault("telemetry_source", SourcePubSub)
	v.SetDefault("subscription", "event")
	v.SetDefault("mqtt_broker_url", "tcp://localhost:1883")
	v.SetDefault("mqtt_client_id", "hydroponics-gateway")
	v.SetDefault("notification_topic", hydroponics.NotificationTopic)
	v.SetDefault("telegram_token", "")
	v.SetDefault("telegram_webhook_key", "")
	v.SetDefault("watchdog_schedule", "@every 15m")
	v.SetDefault("stale_after", "2h")
	v.SetDefault("low_tank_level", 20.0)

	// Cloud Functions set GOOGLE_CLOUD_PROJECT, an explicit HYDRO_PROJECT_ID wins.
	if err := v.BindEnv("project_id", envPrefix+"_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"); err != nil {
		return nil, err
	}

	if path := os.Getenv(envConfigFile); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Registry: hydroponics.Registry{
			ProjectID:  v.GetString("project_id"),
			Region:     v.GetString("region"),
			RegistryID: v.GetString("registry_id"),
		},
		DedupWindow:        v.GetDuration("dedup_window"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		HTTPPort:           v.GetString("http_port"),
		Store:              strings.ToLower(v.GetString("store")),
		PostgresDSN:        v.GetString("postgres_dsn"),
		Transport:          strings.ToLower(v.GetString("transport")),
		TelemetrySource:    strings.ToLower(v.GetString("telemetry_source")),
		Subscription:       v.GetString("subscription"),
		MQTTBrokerURL:      v.GetString("mqtt_broker_url"),
		MQTTClientID:       v.GetString("mqtt_client_id"),
		NotificationTopic:  v.GetString("notification_topic"),
		TelegramToken:      v.GetString("telegram_token"),
		TelegramWebhookKey: v.GetString("telegram_webhook_key"),
		WatchdogSchedule:   v.GetString("watchdog_schedule"),
		StaleAfter:         v.GetDuration("stale_after"),
		LowTankLevel:       v.GetFloat64("low_tank_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.Debug("config loaded", "project", cfg.Registry.ProjectID, "region", cfg.Registry.Region,
		"registry", cfg.Registry.RegistryID, "store", cfg.Store, "transport", cfg.Transport)
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Registry.ProjectID == "" || c.Registry.Region == "" || c.Registry.RegistryID == "" {
		return fmt.Errorf("project, region and registry must be set")
	}
	if c.DedupWindow <= 0 {
		return fmt.Errorf("dedup window must be positive, got %s", c.DedupWindow)
	}
	switch c.Store {
	case StoreFirestore:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("store %q requires %s_POSTGRES_DSN", c.Store, envPrefix)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Transport != TransportIoTCore && c.Transport != TransportMQTT {
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.TelemetrySource != SourcePubSub && c.TelemetrySource != SourceMQTT {
		return fmt.Errorf("unknown telemetry source %q", c.TelemetrySource)
	}
	return nil
}
