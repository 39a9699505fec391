// Package settings provides database operations for the persisted sync
// configuration. At most one configuration row exists at a time.
package settings

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vocadex/vocadex/internal/entities"
)

// Repository handles sync settings persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored sync configuration, or (nil, nil) when the
// user has never logged in.
func (r *Repository) Get() (*entities.SyncSettings, error) {
	var s entities.SyncSettings
	err := r.db.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save creates or updates the configuration row.
func (r *Repository) Save(s *entities.SyncSettings) error {
	return r.db.Save(s).Error
}

// SetLastSyncAt records the completion time of a successful sync.
func (r *Repository) SetLastSyncAt(id uint, at time.Time) error {
	return r.db.Model(&entities.SyncSettings{}).Where("id = ?", id).
		Update("last_sync_at", at).Error
}

// Delete removes the configuration, logging the user out.
func (r *Repository) Delete() error {
	return r.db.Where("1 = 1").Delete(&entities.SyncSettings{}).Error
}
