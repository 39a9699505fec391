package entities

import (
	"time"
)

// SyncSettings identifies a user/device pairing and the Feishu Bitable
// the collection is synchronised with. A single row holds the active
// configuration; logging out deletes it.
type SyncSettings struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"uniqueIndex;size:64" json:"user_id"`
	DeviceID   string    `gorm:"size:64" json:"device_id"`
	AppToken   string    `gorm:"size:128" json:"app_token"` // Bitable app token
	TableID    string    `gorm:"size:128" json:"table_id"`  // words table inside the Bitable
	LastSyncAt time.Time `json:"last_sync_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SyncSettings) TableName() string {
	return "sync_settings"
}
