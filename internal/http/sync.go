package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/syncer"
)

// SyncEngine is the subset of the sync engine the controller drives.
type SyncEngine interface {
	Upload(ctx context.Context, cfg *entities.SyncSettings) (int, error)
	Download(ctx context.Context, cfg *entities.SyncSettings) (syncer.DownloadResult, error)
	SmartSync(ctx context.Context, cfg *entities.SyncSettings) (syncer.SyncResult, error)
}

// SyncAccount manages the persisted sync login.
type SyncAccount interface {
	Login(in syncer.LoginInput) (*entities.SyncSettings, error)
	Logout() error
	Current() (*entities.SyncSettings, error)
}

type SyncController struct {
	account SyncAccount
	engine  SyncEngine
}

func NewSyncController(account SyncAccount, engine SyncEngine) *SyncController {
	return &SyncController{
		account: account,
		engine:  engine,
	}
}

// LoginRequest is the request body for configuring sync.
type LoginRequest struct {
	UserID   string `json:"user_id"`
	AppToken string `json:"app_token" binding:"required"`
	TableID  string `json:"table_id" binding:"required"`
}

// statusView renders the sync configuration without secrets.
func statusView(cfg *entities.SyncSettings) gin.H {
	view := gin.H{
		"user_id":   cfg.UserID,
		"device_id": cfg.DeviceID,
		"table_id":  cfg.TableID,
	}
	if !cfg.LastSyncAt.IsZero() {
		view["last_sync_at"] = cfg.LastSyncAt.Format(time.RFC3339)
	}
	return view
}

// Login stores the Bitable coordinates and assigns identifiers.
// POST /api/sync/login
func (sc *SyncController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	cfg, err := sc.account.Login(syncer.LoginInput{
		UserID:   req.UserID,
		AppToken: req.AppToken,
		TableID:  req.TableID,
	})
	if err != nil {
		respondInternalError(c, err, "sync login")
		return
	}

	respondCreated(c, statusView(cfg))
}

// Logout clears the sync configuration.
// POST /api/sync/logout
func (sc *SyncController) Logout(c *gin.Context) {
	if err := sc.account.Logout(); err != nil {
		respondInternalError(c, err, "sync logout")
		return
	}
	respondSuccess(c, "logged out")
}

// GetStatus reports the current sync configuration.
// GET /api/sync/status
func (sc *SyncController) GetStatus(c *gin.Context) {
	cfg := sc.config(c)
	if cfg == nil {
		return
	}

	view := statusView(cfg)
	view["should_sync"] = syncer.ShouldSync(cfg, timeNow())
	c.JSON(http.StatusOK, view)
}

// Upload pushes local entries missing from the remote table.
// POST /api/sync/upload
func (sc *SyncController) Upload(c *gin.Context) {
	cfg := sc.config(c)
	if cfg == nil {
		return
	}

	uploaded, err := sc.engine.Upload(c.Request.Context(), cfg)
	if err != nil {
		sc.respondSyncError(c, err, "upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploaded": uploaded})
}

// Download pulls remote entries into the local collection.
// POST /api/sync/download
func (sc *SyncController) Download(c *gin.Context) {
	cfg := sc.config(c)
	if cfg == nil {
		return
	}

	result, err := sc.engine.Download(c.Request.Context(), cfg)
	if err != nil {
		sc.respondSyncError(c, err, "download")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"downloaded": result.Synced,
		"skipped":    result.Skipped,
	})
}

// SmartSync runs the bidirectional merge.
// POST /api/sync/smart
func (sc *SyncController) SmartSync(c *gin.Context) {
	cfg := sc.config(c)
	if cfg == nil {
		return
	}

	result, err := sc.engine.SmartSync(c.Request.Context(), cfg)
	if err != nil {
		sc.respondSyncError(c, err, "smart sync")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploaded":   result.Uploaded,
		"downloaded": result.Downloaded,
		"skipped":    result.Skipped,
	})
}

// config loads the active configuration, responding with 401 when
// nobody is logged in. A nil return means the response is written.
func (sc *SyncController) config(c *gin.Context) *entities.SyncSettings {
	cfg, err := sc.account.Current()
	if err != nil {
		if errors.Is(err, syncer.ErrNotLoggedIn) {
			respondError(c, http.StatusUnauthorized, "sync not configured")
			return nil
		}
		respondInternalError(c, err, "sync config")
		return nil
	}
	return cfg
}

func (sc *SyncController) respondSyncError(c *gin.Context, err error, context string) {
	if errors.Is(err, syncer.ErrSyncInFlight) {
		respondError(c, http.StatusConflict, err.Error())
		return
	}
	respondError(c, http.StatusBadGateway, "sync "+context+" failed: "+err.Error())
}
