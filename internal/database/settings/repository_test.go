package settings

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vocadex/vocadex/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_settings_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.SyncSettings{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_GetEmpty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	s, err := repo.Get()
	require.NoError(t, err)
	assert.Nil(t, s, "no configuration before first login")
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Save(&entities.SyncSettings{
		UserID:   "u-1",
		DeviceID: "d-1",
		AppToken: "app-token",
		TableID:  "tbl-1",
	})
	require.NoError(t, err)

	s, err := repo.Get()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, "tbl-1", s.TableID)
}

func TestRepository_SetLastSyncAt(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	s := &entities.SyncSettings{UserID: "u-1", AppToken: "a", TableID: "t"}
	require.NoError(t, repo.Save(s))

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastSyncAt(s.ID, at))

	got, err := repo.Get()
	require.NoError(t, err)
	assert.WithinDuration(t, at, got.LastSyncAt, time.Second)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Save(&entities.SyncSettings{UserID: "u-1", AppToken: "a", TableID: "t"}))
	require.NoError(t, repo.Delete())

	s, err := repo.Get()
	require.NoError(t, err)
	assert.Nil(t, s)
}
