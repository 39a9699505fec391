package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// FreeDictionaryClient implements Client using the Free Dictionary API.
// API docs: https://dictionaryapi.dev/
type FreeDictionaryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewFreeDictionaryClient creates a new Free Dictionary API client.
func NewFreeDictionaryClient() *FreeDictionaryClient {
	return &FreeDictionaryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://api.dictionaryapi.dev/api/v2/entries/en",
		rateLimiter: newRateLimiter(500 * time.Millisecond),
	}
}

func (c *FreeDictionaryClient) Name() string {
	return "freedictionary"
}

// Lookup fetches the word from the Free Dictionary API and reduces the
// response to a single card: first meaning, first definition.
func (c *FreeDictionaryClient) Lookup(ctx context.Context, word string) (*LookupResult, error) {
	word = strings.TrimSpace(strings.ToLower(word))
	if word == "" {
		return nil, fmt.Errorf("empty word")
	}

	c.rateLimiter.wait()

	url := fmt.Sprintf("%s/%s", c.baseURL, word)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Vocadex/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch definition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("word not found: %s", word)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResponse []freeDictionaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResponse) == 0 {
		return nil, fmt.Errorf("empty response for word: %s", word)
	}

	return convertToLookupResult(apiResponse[0])
}

func convertToLookupResult(entry freeDictionaryResponse) (*LookupResult, error) {
	if len(entry.Meanings) == 0 || len(entry.Meanings[0].Definitions) == 0 {
		return nil, fmt.Errorf("no definitions for word: %s", entry.Word)
	}

	firstMeaning := entry.Meanings[0]
	firstDefinition := firstMeaning.Definitions[0]

	result := &LookupResult{
		Word:         entry.Word,
		Phonetic:     entry.Phonetic,
		PartOfSpeech: firstMeaning.PartOfSpeech,
		DefinitionEN: firstDefinition.Definition,
		Example:      findExample(entry),
	}

	if result.Phonetic == "" {
		for _, p := range entry.Phonetics {
			if p.Text != "" {
				result.Phonetic = p.Text
				break
			}
		}
	}

	if len(firstMeaning.Synonyms) > 6 {
		result.Synonyms = firstMeaning.Synonyms[:6]
	} else {
		result.Synonyms = firstMeaning.Synonyms
	}

	return result, nil
}

// findExample looks for an example sentence, preferring the first
// definition, then other definitions of the same part of speech, then
// any other meaning.
func findExample(entry freeDictionaryResponse) string {
	for _, def := range entry.Meanings[0].Definitions {
		if def.Example != "" {
			return def.Example
		}
	}
	for _, meaning := range entry.Meanings[1:] {
		for _, def := range meaning.Definitions {
			if def.Example != "" {
				return def.Example
			}
		}
	}
	return ""
}

// Free Dictionary API response types

type freeDictionaryResponse struct {
	Word      string             `json:"word"`
	Phonetic  string             `json:"phonetic"`
	Phonetics []freeDictPhonetic `json:"phonetics"`
	Meanings  []freeDictMeaning  `json:"meanings"`
}

type freeDictPhonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type freeDictMeaning struct {
	PartOfSpeech string               `json:"partOfSpeech"`
	Definitions  []freeDictDefinition `json:"definitions"`
	Synonyms     []string             `json:"synonyms"`
}

type freeDictDefinition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}
