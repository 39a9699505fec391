package services

import (
	"context"
	"fmt"
	"log"

	"github.com/vocadex/vocadex/internal/database/words"
	"github.com/vocadex/vocadex/internal/dictionary"
	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/tasks"
)

// EntryStore handles persistence for looked-up words.
type EntryStore interface {
	Add(in words.NewEntryInput) (*entities.Entry, error)
}

// LookupService resolves a word against the dictionary, stores it with
// fresh scheduling state, and queues Chinese translation in the
// background. The caller gets the entry back immediately; the
// translation lands later via the task queue.
type LookupService struct {
	dict       dictionary.Client
	store      EntryStore
	taskClient *tasks.Client
}

func NewLookupService(dict dictionary.Client, store EntryStore, taskClient *tasks.Client) *LookupService {
	return &LookupService{
		dict:       dict,
		store:      store,
		taskClient: taskClient,
	}
}

// Lookup fetches the word's primary sense without persisting anything.
func (s *LookupService) Lookup(ctx context.Context, word string) (*dictionary.LookupResult, error) {
	return s.dict.Lookup(ctx, word)
}

// LookupAndSave fetches the word and stores it as a new entry. Saving
// an already-known word returns the existing entry untouched.
func (s *LookupService) LookupAndSave(ctx context.Context, word string) (*entities.Entry, error) {
	result, err := s.dict.Lookup(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", word, err)
	}

	entry, err := s.store.Add(words.NewEntryInput{
		Word:         result.Word,
		Phonetic:     result.Phonetic,
		PartOfSpeech: result.PartOfSpeech,
		DefinitionEN: result.DefinitionEN,
		Example:      result.Example,
	})
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", word, err)
	}

	if entry.DefinitionZH == "" && s.taskClient != nil {
		if _, err := s.taskClient.Add(tasks.TranslateEntryTask{EntryID: entry.ID}).Save(); err != nil {
			log.Printf("[TASK] failed to queue translation for %s: %v", entry.ID, err)
		}
	}

	return entry, nil
}
