package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/vocadex/vocadex/internal/dictionary"
	"github.com/vocadex/vocadex/internal/entities"
)

// EntryStore defines the repository operations the enrichment tasks need.
type EntryStore interface {
	GetByID(id string) (*entities.Entry, error)
	SetTranslation(id, definitionZH string) error
}

// TranslateEntryTask fills in the translated definition of one entry.
// The primary lookup result is stored and shown before this runs; the
// task joins back to the entry by identity, so an entry deleted in the
// meantime simply ends the task.
type TranslateEntryTask struct {
	EntryID string `json:"entry_id"`
}

func (t TranslateEntryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "translate_entry",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// TranslateEntryProcessor creates a processor for translation enrichment.
func TranslateEntryProcessor(store EntryStore, translator dictionary.Translator) backlite.QueueProcessor[TranslateEntryTask] {
	return func(ctx context.Context, task TranslateEntryTask) error {
		entry, err := store.GetByID(task.EntryID)
		if err != nil {
			return fmt.Errorf("get entry %s: %w", task.EntryID, err)
		}
		if entry == nil {
			log.Printf("[TASK] Entry %s gone before translation, dropping", task.EntryID)
			return nil
		}

		translated, err := translator.Translate(ctx, entry.DefinitionEN)
		if err != nil {
			// Degrade to the English text so the card is never left
			// with the loading placeholder.
			if fallbackErr := store.SetTranslation(entry.ID, entry.DefinitionEN); fallbackErr != nil {
				log.Printf("[TASK] Failed to store fallback translation: %v", fallbackErr)
			}
			return fmt.Errorf("translate entry %s: %w", task.EntryID, err)
		}

		if err := store.SetTranslation(entry.ID, translated); err != nil {
			return fmt.Errorf("store translation for %s: %w", task.EntryID, err)
		}

		log.Printf("[TASK] Translated definition for %q", entry.Word)
		return nil
	}
}

func NewTranslateEntryQueue(store EntryStore, translator dictionary.Translator) backlite.Queue {
	return backlite.NewQueue(TranslateEntryProcessor(store, translator))
}
