package dictionary

import (
	"context"
)

// LookupResult is the primary lookup payload: the first meaning's first
// definition plus an example sentence scavenged from the response.
// The translated definition is filled in later by the async enrichment,
// never by the dictionary itself.
type LookupResult struct {
	Word         string   `json:"word"`
	Phonetic     string   `json:"phonetic"`
	PartOfSpeech string   `json:"part_of_speech"`
	DefinitionEN string   `json:"definition_en"`
	Example      string   `json:"example"`
	Synonyms     []string `json:"synonyms,omitempty"`
}

// Client defines the interface for dictionary API providers.
type Client interface {
	Lookup(ctx context.Context, word string) (*LookupResult, error)
	Name() string
}

// Translator turns an English text into the user's language. A failed
// translation degrades to the original text upstream, it is never a
// hard error for the lookup flow.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}
