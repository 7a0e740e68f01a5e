// Package store persists per-project snapshots of the domain model in a
// local sqlite database. Payloads are whole JSON arrays of canonical
// types, keyed by project id and kind, so the cache survives restarts
// and is cleared in one sweep on logout.
package store

import (
	"encoding/json"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/slateboard/slateboard-go/internal/errors"
	"github.com/slateboard/slateboard-go/internal/logging"
	"github.com/slateboard/slateboard-go/internal/model"
)

// Payload kinds.
const (
	KindCreatives = "creatives"
	KindFrames    = "frames"
)

// CachedPayload is one cached JSON document.
type CachedPayload struct {
	ID        uint   `gorm:"primarykey"`
	ProjectID string `gorm:"uniqueIndex:idx_project_kind;size:64;not null"`
	Kind      string `gorm:"uniqueIndex:idx_project_kind;size:32;not null"`
	Payload   []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// Store is the persistent project cache.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open opens or creates the cache database at path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryCache).
			Context("path", path).
			Component("store").
			Build()
	}
	if err := db.AutoMigrate(&CachedPayload{}); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryCache).
			Context("path", path).
			Component("store").
			Build()
	}

	log := logging.ForService("store")
	log.Debug("cache database opened", "path", path)
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveCreatives stores the project's creative list.
func (s *Store) SaveCreatives(projectID string, creatives []model.Creative) error {
	return s.save(projectID, KindCreatives, creatives)
}

// LoadCreatives returns the cached creative list, or nil when the project
// has no cached entry.
func (s *Store) LoadCreatives(projectID string) ([]model.Creative, error) {
	var creatives []model.Creative
	found, err := s.load(projectID, KindCreatives, &creatives)
	if err != nil || !found {
		return nil, err
	}
	return creatives, nil
}

// SaveFrames stores the project's frame list.
func (s *Store) SaveFrames(projectID string, frames []model.Frame) error {
	return s.save(projectID, KindFrames, frames)
}

// LoadFrames returns the cached frame list, or nil when the project has
// no cached entry.
func (s *Store) LoadFrames(projectID string) ([]model.Frame, error) {
	var frames []model.Frame
	found, err := s.load(projectID, KindFrames, &frames)
	if err != nil || !found {
		return nil, err
	}
	return frames, nil
}

// Clear removes every cached payload for one project.
func (s *Store) Clear(projectID string) error {
	result := s.db.Where("project_id = ?", projectID).Delete(&CachedPayload{})
	if result.Error != nil {
		return errors.New(result.Error).
			Category(errors.CategoryCache).
			Context("project_id", projectID).
			Component("store").
			Build()
	}
	return nil
}

// ClearAll removes every cached payload. Called on logout.
func (s *Store) ClearAll() error {
	result := s.db.Where("1 = 1").Delete(&CachedPayload{})
	if result.Error != nil {
		return errors.New(result.Error).
			Category(errors.CategoryCache).
			Component("store").
			Build()
	}
	s.log.Debug("cache cleared", "rows", result.RowsAffected)
	return nil
}

func (s *Store) save(projectID, kind string, value any) error {
	if projectID == "" {
		return errors.Newf("project id is empty").
			Category(errors.CategoryValidation).
			Component("store").
			Build()
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryCache).
			Context("kind", kind).
			Component("store").
			Build()
	}

	// Update-then-insert keeps the unique (project_id, kind) pair without
	// relying on driver-specific upsert clauses.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&CachedPayload{}).
			Where("project_id = ? AND kind = ?", projectID, kind).
			Updates(map[string]any{"payload": payload, "updated_at": time.Now()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&CachedPayload{
			ProjectID: projectID,
			Kind:      kind,
			Payload:   payload,
		}).Error
	})
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryCache).
			Context("project_id", projectID).
			Context("kind", kind).
			Component("store").
			Build()
	}
	return nil
}

func (s *Store) load(projectID, kind string, out any) (bool, error) {
	var row CachedPayload
	result := s.db.Where("project_id = ? AND kind = ?", projectID, kind).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, errors.New(result.Error).
			Category(errors.CategoryCache).
			Context("project_id", projectID).
			Context("kind", kind).
			Component("store").
			Build()
	}

	if err := json.Unmarshal(row.Payload, out); err != nil {
		return false, errors.New(err).
			Category(errors.CategoryDecode).
			Context("project_id", projectID).
			Context("kind", kind).
			Component("store").
			Build()
	}
	return true, nil
}
