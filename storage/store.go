package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/peptidestore/config"
	"github.com/peptidestore/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record represents the records table: one durable JSON value per key.
// It mirrors the browser-local storage the storefront state model is
// built around (cart, selectedWarehouse, checkoutFormData, lastOrder),
// namespaced per session.
type Record struct {
	Key       string    `gorm:"primaryKey;type:varchar(200);column:key" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Record
func (Record) TableName() string {
	return "records"
}

// Store is the local durable store. Writes are synchronous: every cart
// mutation lands on disk before the call returns.
type Store struct {
	db *gorm.DB
}

// Open opens the sqlite store and runs auto migration
func Open(cfg *config.StorageConfig) (*Store, error) {
	return OpenWithOptions(cfg, false)
}

// OpenWithOptions opens the sqlite store with options
func OpenWithOptions(cfg *config.StorageConfig, disableQueryLog bool) (*Store, error) {
	var gormLogger logger.Interface
	if disableQueryLog {
		gormLogger = logger.Default.LogMode(logger.Silent)
	} else {
		gormLogger = &CustomGormLogger{
			Interface: logger.Default.LogMode(logger.Warn),
		}
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage at %s: %w", cfg.Path, err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	log.Println("Durable store opened successfully")
	return &Store{db: db}, nil
}

// AutoMigrate runs auto migration for all persisted models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Record{}, &models.ContactSubmission{}); err != nil {
		return fmt.Errorf("storage migration failed: %w", err)
	}
	return nil
}

// Get loads the JSON value under key into out. The second return is
// false when the key does not exist.
func (s *Store) Get(key string, out any) (bool, error) {
	var rec Record
	err := s.db.First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage get %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(rec.Value), out); err != nil {
		return false, fmt.Errorf("storage decode %q: %w", key, err)
	}
	return true, nil
}

// Put stores value under key as JSON, overwriting any previous value
func (s *Store) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage encode %q: %w", key, err)
	}
	rec := Record{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	err = s.db.Save(&rec).Error
	if err != nil {
		return fmt.Errorf("storage put %q: %w", key, err)
	}
	return nil
}

// Delete removes the value under key; missing keys are not an error
func (s *Store) Delete(key string) error {
	if err := s.db.Delete(&Record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("storage delete %q: %w", key, err)
	}
	return nil
}

// SaveContact persists one contact form submission
func (s *Store) SaveContact(sub *models.ContactSubmission) error {
	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to save contact submission: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
