package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ISim/Arduino/hydroponicsgcf/hydroponics"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo keeps latest states, history and operator chats in a SQL database.
// Timestamps come from the repo's clock, never from callers.
type Repo struct {
	db    *gorm.DB
	clock hydroponics.Clock
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func New(db *gorm.DB, clock hydroponics.Clock) (*Repo, error) {
	if err := db.AutoMigrate(&LatestState{}, &HistoryRecord{}, &DeviceChat{}); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = hydroponics.SystemClock
	}
	return &Repo{db: db, clock: clock}, nil
}

func (r *Repo) UpdateLatest(ctx context.Context, deviceID string, readings hydroponics.Readings) error {
	row := LatestState{
		DeviceID: deviceID,
		Readings: toColumns(readings),
		TS:       r.clock.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("latest state for (%s) failed: %w", deviceID, err)
	}
	return nil
}

func (r *Repo) Archive(ctx context.Context, deviceID string, readings hydroponics.Readings, window time.Duration) (bool, error) {
	now := r.clock.Now().UTC()
	archived := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDevice(tx, deviceID); err != nil {
			return err
		}

		var recent int64
		if err := tx.Model(&HistoryRecord{}).
			Where("device_id = ? AND ts > ?", deviceID, hydroponics.WindowStart(now, window)).
			Count(&recent).Error; err != nil {
			return err
		}
		if recent > 0 {
			return nil
		}

		if err := tx.Create(&HistoryRecord{
			ID:       uuid.New(),
			DeviceID: deviceID,
			Readings: toColumns(readings),
			TS:       now,
		}).Error; err != nil {
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

// lockDevice serialises archive decisions of one device until the transaction
// ends. The advisory lock needs no row, so it also covers devices without a
// latest state. SQLite fails a second concurrent writer instead.
func lockDevice(tx *gorm.DB, deviceID string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", deviceID).Error
}

// Latest returns nil without error for devices that never reported.
func (r *Repo) Latest(ctx context.Context, deviceID string) (*hydroponics.LatestState, error) {
	var rows []LatestState
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].unwrap(), nil
}

func (r *Repo) AllLatest(ctx context.Context) ([]*hydroponics.LatestState, error) {
	var rows []LatestState
	if err := r.db.WithContext(ctx).Order("device_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("can't retrieve devices: %w", err)
	}
	result := make([]*hydroponics.LatestState, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].unwrap())
	}
	return result, nil
}

// AddChat subscribes chatID to the device's alerts. A device that has not
// reported yet gets a latest state without timestamp, so the watchdog can
// flag it.
func (r *Repo) AddChat(ctx context.Context, deviceID string, chatID int64, username string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&LatestState{DeviceID: deviceID}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "chat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username"}),
		}).Create(&DeviceChat{
			DeviceID:  deviceID,
			ChatID:    chatID,
			Username:  username,
			CreatedAt: r.clock.Now().UTC(),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("add chat %d to (%s) failed: %w", chatID, deviceID, err)
	}
	return nil
}

func (r *Repo) AllChats(ctx context.Context, deviceID string) ([]int64, error) {
	var chats []int64
	err := r.db.WithContext(ctx).Model(&DeviceChat{}).
		Where("device_id = ?", deviceID).Order("chat_id").Pluck("chat_id", &chats).Error
	if err != nil {
		return nil, fmt.Errorf("retrieve all chats failed: %w", err)
	}
	return chats, nil
}

func (r *Repo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
