package syncer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vocadex/vocadex/internal/entities"
)

// ErrNotLoggedIn is returned when a sync operation is requested without
// an active configuration.
var ErrNotLoggedIn = errors.New("no active sync configuration")

// ConfigStore persists the sync configuration across restarts.
type ConfigStore interface {
	Get() (*entities.SyncSettings, error)
	Save(s *entities.SyncSettings) error
	Delete() error
}

// Session holds the single active sync configuration with an explicit
// login/logout lifecycle. The configuration is loaded from the store on
// first use and cleared on logout.
type Session struct {
	mu     sync.Mutex
	store  ConfigStore
	active *entities.SyncSettings
	loaded bool
}

// NewSession creates a session backed by the given store.
func NewSession(store ConfigStore) *Session {
	return &Session{store: store}
}

// LoginInput carries the remote table coordinates supplied by the user.
// UserID is optional: a fresh one is generated on first login.
type LoginInput struct {
	UserID   string
	AppToken string
	TableID  string
}

// Login activates and persists a sync configuration, generating user
// and device identifiers when absent.
func (s *Session) Login(in LoginInput) (*entities.SyncSettings, error) {
	if in.AppToken == "" || in.TableID == "" {
		return nil, fmt.Errorf("app token and table id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := &entities.SyncSettings{
		UserID:   in.UserID,
		AppToken: in.AppToken,
		TableID:  in.TableID,
	}
	if cfg.UserID == "" {
		cfg.UserID = "user_" + uuid.NewString()
	}
	cfg.DeviceID = "device_" + uuid.NewString()

	if err := s.store.Save(cfg); err != nil {
		return nil, fmt.Errorf("save sync settings: %w", err)
	}

	s.active = cfg
	s.loaded = true
	return cfg, nil
}

// Logout clears the active configuration and deletes the stored one.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = nil
	s.loaded = true
	return s.store.Delete()
}

// Current returns the active configuration, loading it from the store
// on first call. Returns ErrNotLoggedIn when none exists.
func (s *Session) Current() (*entities.SyncSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		cfg, err := s.store.Get()
		if err != nil {
			return nil, fmt.Errorf("load sync settings: %w", err)
		}
		s.active = cfg
		s.loaded = true
	}

	if s.active == nil {
		return nil, ErrNotLoggedIn
	}
	return s.active, nil
}
