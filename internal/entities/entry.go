package entities

import (
	"fmt"
	"strings"
	"time"
)

// SM-2 scheduling defaults. A freshly added entry has never been
// reviewed: zero interval, default ease, due immediately.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Entry is a saved vocabulary item together with its spaced-repetition
// scheduling state. The primary key is derived from the headword and
// part of speech, so re-adding the same word is a no-op.
type Entry struct {
	ID           string `gorm:"primaryKey;size:256" json:"id"`
	Word         string `gorm:"index;size:128" json:"word"`
	Phonetic     string `gorm:"size:128" json:"phonetic"`
	PartOfSpeech string `gorm:"size:32" json:"part_of_speech"`
	DefinitionEN string `gorm:"type:text" json:"definition_en"`
	DefinitionZH string `gorm:"type:text" json:"definition_zh"`
	Example      string `gorm:"type:text" json:"example"`

	// Scheduling state, mutated only through review ratings or a
	// state-preserving import from the remote store.
	Interval     int        `json:"interval"`    // days until next review, 0 = never reviewed
	EaseFactor   float64    `json:"ease_factor"` // growth multiplier, floor-clamped at MinEaseFactor
	NextReviewAt time.Time  `gorm:"index" json:"next_review_at"`
	ReviewCount  int        `json:"review_count"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "entries"
}

// EntryID builds the deterministic identity key for a headword and
// part-of-speech pair.
func EntryID(word, partOfSpeech string) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(strings.TrimSpace(word)), partOfSpeech)
}

// IsNew reports whether the entry has never been rated.
func (e *Entry) IsNew() bool {
	return e.ReviewCount == 0
}

// IsDue reports whether the entry has been reviewed at least once and
// its next review time has passed.
func (e *Entry) IsDue(now time.Time) bool {
	return e.ReviewCount > 0 && !e.NextReviewAt.After(now)
}
