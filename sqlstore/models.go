package sqlstore

import (
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/google/uuid"
)

type readingColumns struct {
	Initialized *bool
	ElapsedDays *int
	TDSValue    *float64 `gorm:"column:tds_value"`
	PHValue     *float64 `gorm:"column:ph_value"`
	Temperature *float64
	Humidity    *float64
	TankLevel   *float64
}

type LatestState struct {
	DeviceID string         `gorm:"primaryKey"`
	Readings readingColumns `gorm:"embedded"`
	TS       time.Time      `gorm:"column:ts"`
}

type HistoryRecord struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DeviceID string         `gorm:"index:idx_history_device_ts,priority:1"`
	Readings readingColumns `gorm:"embedded"`
	TS       time.Time      `gorm:"column:ts;index:idx_history_device_ts,priority:2"`
}

type DeviceChat struct {
	DeviceID  string `gorm:"primaryKey"`
	ChatID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Username  string
	CreatedAt time.Time
}

func toColumns(r hydroponics.Readings) readingColumns {
	return readingColumns{
		Initialized: r.Initialized,
		ElapsedDays: r.ElapsedDays,
		TDSValue:    r.TDSValue,
		PHValue:     r.PHValue,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		TankLevel:   r.TankLevel,
	}
}

func (c readingColumns) readings() hydroponics.Readings {
	return hydroponics.Readings{
		Initialized: c.Initialized,
		ElapsedDays: c.ElapsedDays,
		TDSValue:    c.TDSValue,
		PHValue:     c.PHValue,
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		TankLevel:   c.TankLevel,
	}
}

func (s *LatestState) unwrap() *hydroponics.LatestState {
	return &hydroponics.LatestState{
		DeviceID:  s.DeviceID,
		Readings:  s.Readings.readings(),
		Timestamp: s.TS,
	}
}
