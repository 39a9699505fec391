// Package words provides database operations for vocabulary entries.
//
// Entries are keyed by a deterministic identity derived from headword
// and part of speech, which makes insertion idempotent: adding a word
// that already exists returns the stored entry unchanged.
//
// # Usage
//
//	repo := words.NewRepository(db)
//	entry, err := repo.Add(words.NewEntryInput{Word: "serendipity", PartOfSpeech: "noun"})
package words

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/srs"
)

// Repository handles all entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new words repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NewEntryInput carries the content fields of a fresh lookup result.
// Scheduling state is initialised to the never-reviewed defaults.
type NewEntryInput struct {
	Word         string
	Phonetic     string
	PartOfSpeech string
	DefinitionEN string
	DefinitionZH string
	Example      string
}

// Add stores a new entry with default scheduling state. If an entry
// with the same identity key already exists it is returned unchanged.
func (r *Repository) Add(in NewEntryInput) (*entities.Entry, error) {
	id := entities.EntryID(in.Word, in.PartOfSpeech)

	existing, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	entry := &entities.Entry{
		ID:           id,
		Word:         in.Word,
		Phonetic:     in.Phonetic,
		PartOfSpeech: in.PartOfSpeech,
		DefinitionEN: in.DefinitionEN,
		DefinitionZH: in.DefinitionZH,
		Example:      in.Example,
		Interval:     0,
		EaseFactor:   entities.DefaultEaseFactor,
		NextReviewAt: now,
		ReviewCount:  0,
		CreatedAt:    now,
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// AddWithState stores an entry preserving the scheduling fields it
// arrives with, used when restoring progress from the remote store.
// Idempotent like Add: an existing entry wins over the imported one.
func (r *Repository) AddWithState(entry *entities.Entry) (*entities.Entry, error) {
	entry.ID = entities.EntryID(entry.Word, entry.PartOfSpeech)

	existing, err := r.GetByID(entry.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// GetAll returns every entry, newest first.
func (r *Repository) GetAll() ([]entities.Entry, error) {
	var list []entities.Entry
	err := r.db.Order("created_at DESC").Find(&list).Error
	return list, err
}

// GetByID retrieves an entry by identity key. Returns (nil, nil) when
// no such entry exists.
func (r *Repository) GetByID(id string) (*entities.Entry, error) {
	var entry entities.Entry
	err := r.db.First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Search returns entries whose headword contains the query.
func (r *Repository) Search(query string, limit int) ([]entities.Entry, error) {
	var list []entities.Entry
	q := r.db.Where("LOWER(word) LIKE LOWER(?)", "%"+query+"%").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

// ApplyReview persists the scheduler's result for a rated entry and
// performs the bookkeeping the scheduler leaves to its caller: the
// review count is incremented and the last-review time recorded.
func (r *Repository) ApplyReview(id string, next srs.State, now time.Time) error {
	res := r.db.Model(&entities.Entry{}).Where("id = ?", id).Updates(map[string]any{
		"interval":       next.Interval,
		"ease_factor":    next.EaseFactor,
		"next_review_at": next.NextReviewAt,
		"review_count":   gorm.Expr("review_count + 1"),
		"last_review_at": now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetTranslation fills in the translated definition once the async
// translation completes. A missing entry is not an error: the entry may
// have been deleted while the translation was in flight.
func (r *Repository) SetTranslation(id, definitionZH string) error {
	return r.db.Model(&entities.Entry{}).Where("id = ?", id).
		Update("definition_zh", definitionZH).Error
}

// SetExample replaces the example sentence of an entry.
func (r *Repository) SetExample(id, example string) error {
	res := r.db.Model(&entities.Entry{}).Where("id = ?", id).Update("example", example)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an entry.
func (r *Repository) Delete(id string) error {
	return r.db.Delete(&entities.Entry{}, "id = ?", id).Error
}
