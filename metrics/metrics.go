package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydroponics_commands_total",
			Help: "Commands forwarded to devices by result",
		},
		[]string{"result"},
	)

	LatestWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydroponics_latest_writes_total",
			Help: "Latest-state overwrites by result",
		},
		[]string{"result"},
	)

	HistoryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydroponics_history_total",
			Help: "History archive decisions by outcome",
		},
		[]string{"outcome"},
	)

	WatchdogAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydroponics_watchdog_alerts_total",
			Help: "Watchdog alerts published by kind",
		},
		[]string{"kind"},
	)

	registerOnce sync.Once
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(CommandsTotal)
		prometheus.MustRegister(LatestWritesTotal)
		prometheus.MustRegister(HistoryTotal)
		prometheus.MustRegister(WatchdogAlertsTotal)
	})
}
