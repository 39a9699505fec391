package review

import (
	"errors"
	"sync"
	"time"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/srs"
)

// Mode selects which queue a session walks.
type Mode string

const (
	// ModeDue reviews due entries followed by new ones.
	ModeDue Mode = "due"
	// ModeAll reviews the whole collection ordered by next review time.
	ModeAll Mode = "all"
)

// Store is the subset of the words repository the session needs.
type Store interface {
	GetAll() ([]entities.Entry, error)
	ApplyReview(id string, next srs.State, now time.Time) error
}

var (
	// ErrSessionComplete is returned by Rate once the queue is exhausted.
	ErrSessionComplete = errors.New("review session complete")
	// ErrNotComplete guards the mode transitions, which are only legal
	// from a finished session.
	ErrNotComplete = errors.New("review session still in progress")
)

// Session walks a review queue one card at a time. Ratings are applied
// strictly sequentially; the mutex only protects against concurrent
// HTTP requests hitting the same session.
type Session struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time

	mode     Mode
	queue    []entities.Entry
	cursor   int
	complete bool
}

// NewSession creates a session in due mode with a freshly built queue.
func NewSession(store Store) (*Session, error) {
	s := &Session{store: store, now: time.Now}
	if err := s.load(ModeDue); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(mode Mode) error {
	entries, err := s.store.GetAll()
	if err != nil {
		return err
	}

	s.mode = mode
	s.cursor = 0
	if mode == ModeAll {
		s.queue = SelectAll(entries)
	} else {
		s.queue = SelectDue(entries, s.now())
	}
	s.complete = len(s.queue) == 0
	return nil
}

// Current returns the card under the cursor, or false when the session
// is complete or the queue is empty.
func (s *Session) Current() (*entities.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete || s.cursor >= len(s.queue) {
		return nil, false
	}
	e := s.queue[s.cursor]
	return &e, true
}

// Rate applies the rating to the current card, persists the new
// scheduling state and advances the cursor. Reaching the end of the
// queue moves the session into its terminal complete state.
func (s *Session) Rate(rating srs.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete || s.cursor >= len(s.queue) {
		return ErrSessionComplete
	}

	entry := s.queue[s.cursor]
	now := s.now()
	next := srs.Next(srs.State{
		Interval:     entry.Interval,
		EaseFactor:   entry.EaseFactor,
		NextReviewAt: entry.NextReviewAt,
	}, rating, now)

	if err := s.store.ApplyReview(entry.ID, next, now); err != nil {
		return err
	}

	s.cursor++
	if s.cursor >= len(s.queue) {
		s.complete = true
	}
	return nil
}

// ContinueAll switches a completed due-mode session to all mode,
// rebuilding the queue over the whole collection.
func (s *Session) ContinueAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.complete || s.mode != ModeDue {
		return ErrNotComplete
	}
	return s.load(ModeAll)
}

// Restart returns a completed all-mode session to due mode with a
// fresh due queue.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.complete || s.mode != ModeAll {
		return ErrNotComplete
	}
	return s.load(ModeDue)
}

// Mode reports which queue the session is walking.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Complete reports whether the queue has been exhausted.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Progress returns the cursor position and queue length.
func (s *Session) Progress() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, len(s.queue)
}
