package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocadex/vocadex/internal/database/words"
	"github.com/vocadex/vocadex/internal/dictionary"
	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/services"
	"github.com/vocadex/vocadex/internal/srs"
)

// fakeWordStore keeps entries in memory and satisfies both the
// controller's WordStore and the lookup service's EntryStore.
type fakeWordStore struct {
	entries map[string]*entities.Entry
	order   []string
}

func newFakeWordStore() *fakeWordStore {
	return &fakeWordStore{entries: make(map[string]*entities.Entry)}
}

func (f *fakeWordStore) put(e *entities.Entry) {
	if _, ok := f.entries[e.ID]; !ok {
		f.order = append(f.order, e.ID)
	}
	f.entries[e.ID] = e
}

func (f *fakeWordStore) Add(in words.NewEntryInput) (*entities.Entry, error) {
	id := entities.EntryID(in.Word, in.PartOfSpeech)
	if existing, ok := f.entries[id]; ok {
		return existing, nil
	}
	entry := &entities.Entry{
		ID:           id,
		Word:         in.Word,
		Phonetic:     in.Phonetic,
		PartOfSpeech: in.PartOfSpeech,
		DefinitionEN: in.DefinitionEN,
		Example:      in.Example,
		EaseFactor:   entities.DefaultEaseFactor,
		NextReviewAt: time.Now(),
		CreatedAt:    time.Now(),
	}
	f.put(entry)
	return entry, nil
}

func (f *fakeWordStore) GetAll() ([]entities.Entry, error) {
	out := make([]entities.Entry, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, *f.entries[f.order[i]])
	}
	return out, nil
}

func (f *fakeWordStore) GetByID(id string) (*entities.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	clone := *e
	return &clone, nil
}

func (f *fakeWordStore) Search(query string, limit int) ([]entities.Entry, error) {
	var out []entities.Entry
	for _, id := range f.order {
		e := f.entries[id]
		if len(out) >= limit {
			break
		}
		if query == "" || containsFold(e.Word, query) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	return bytes.Contains(bytes.ToLower([]byte(haystack)), bytes.ToLower([]byte(needle)))
}

func (f *fakeWordStore) SetExample(id, example string) error {
	if e, ok := f.entries[id]; ok {
		e.Example = example
	}
	return nil
}

func (f *fakeWordStore) Delete(id string) error {
	delete(f.entries, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type stubDict struct {
	result *dictionary.LookupResult
	err    error
}

func (s *stubDict) Lookup(ctx context.Context, word string) (*dictionary.LookupResult, error) {
	return s.result, s.err
}

func (s *stubDict) Name() string { return "stub" }

type stubGenerator struct {
	example string
	err     error
}

func (s *stubGenerator) GenerateExample(ctx context.Context, word, definition string) (string, error) {
	return s.example, s.err
}

type stubAnalyzer struct {
	analysis string
	err      error
}

func (s *stubAnalyzer) AnalyzeSentence(ctx context.Context, sentence string) (string, error) {
	return s.analysis, s.err
}

func setupWordsRouter(t *testing.T, store *fakeWordStore, dict dictionary.Client, gen ExampleGenerator) *gin.Engine {
	return setupWordsRouterWithAnalyzer(t, store, dict, gen, nil)
}

func setupWordsRouterWithAnalyzer(t *testing.T, store *fakeWordStore, dict dictionary.Client, gen ExampleGenerator, analyzer SentenceAnalyzer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lookup := services.NewLookupService(dict, store, nil)
	sentences := services.NewSentenceService(dict, nil)
	controller := NewWordsController(store, lookup, sentences, gen, analyzer)

	router := gin.New()
	router.GET("/api/words", controller.ListWords)
	router.POST("/api/words", controller.AddWord)
	router.GET("/api/words/search", controller.SearchWords)
	router.GET("/api/words/stats", controller.GetStats)
	router.GET("/api/words/:id", controller.GetWord)
	router.DELETE("/api/words/:id", controller.DeleteWord)
	router.POST("/api/words/:id/example", controller.GenerateExample)
	router.GET("/api/lookup/:word", controller.Lookup)
	router.POST("/api/lookup", controller.LookupText)
	router.POST("/api/sentence/analysis", controller.AnalyzeSentence)
	return router
}

func TestWordsController_AddWord(t *testing.T) {
	store := newFakeWordStore()
	dict := &stubDict{result: &dictionary.LookupResult{
		Word:         "serendipity",
		PartOfSpeech: "noun",
		DefinitionEN: "finding something good without looking for it",
	}}
	router := setupWordsRouter(t, store, dict, nil)

	body, _ := json.Marshal(AddWordRequest{Word: "serendipity"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/words", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Word wordView `json:"word"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "serendipity-noun", response.Word.ID)
	assert.Equal(t, srs.TierNew, response.Word.Mastery)
}

func TestWordsController_AddWord_LookupFails(t *testing.T) {
	store := newFakeWordStore()
	dict := &stubDict{err: assert.AnError}
	router := setupWordsRouter(t, store, dict, nil)

	body, _ := json.Marshal(AddWordRequest{Word: "zzzz"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/words", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, store.entries)
}

func TestWordsController_Lookup_DoesNotSave(t *testing.T) {
	store := newFakeWordStore()
	dict := &stubDict{result: &dictionary.LookupResult{
		Word:         "brisk",
		PartOfSpeech: "adjective",
		DefinitionEN: "active and energetic",
	}}
	router := setupWordsRouter(t, store, dict, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/lookup/brisk", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.entries)

	var response struct {
		Result dictionary.LookupResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "brisk", response.Result.Word)
}

// multiDict resolves only the words it was seeded with.
type multiDict struct {
	senses map[string]*dictionary.LookupResult
}

func (d *multiDict) Lookup(ctx context.Context, word string) (*dictionary.LookupResult, error) {
	if r, ok := d.senses[word]; ok {
		return r, nil
	}
	return nil, assert.AnError
}

func (d *multiDict) Name() string { return "multi" }

func TestWordsController_LookupText_SentenceBranch(t *testing.T) {
	store := newFakeWordStore()
	dict := &multiDict{senses: map[string]*dictionary.LookupResult{
		"quick": {Word: "quick", PartOfSpeech: "adjective", DefinitionEN: "fast"},
		"fox":   {Word: "fox", PartOfSpeech: "noun", DefinitionEN: "a wild canine"},
	}}
	router := setupWordsRouter(t, store, dict, nil)

	body, _ := json.Marshal(map[string]string{"text": "the quick fox zzgarbled"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/lookup", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.entries, "sentence lookup must not save anything")

	var response struct {
		Sentence services.SentenceResult `json:"sentence"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "the quick fox zzgarbled", response.Sentence.Original)

	require.Len(t, response.Sentence.Words, 2, "unresolvable words are dropped")
	assert.Equal(t, "quick-adjective", response.Sentence.Words[0].ID)
	assert.Equal(t, "fox-noun", response.Sentence.Words[1].ID)
}

func TestWordsController_LookupText_SingleWordBranch(t *testing.T) {
	dict := &stubDict{result: &dictionary.LookupResult{
		Word:         "brisk",
		PartOfSpeech: "adjective",
		DefinitionEN: "active and energetic",
	}}
	router := setupWordsRouter(t, newFakeWordStore(), dict, nil)

	body, _ := json.Marshal(map[string]string{"text": "brisk"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/lookup", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Result dictionary.LookupResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "brisk", response.Result.Word)
}

func TestWordsController_AnalyzeSentence(t *testing.T) {
	t.Run("returns the coaching breakdown", func(t *testing.T) {
		analyzer := &stubAnalyzer{analysis: "1. Likely mistranslation ..."}
		router := setupWordsRouterWithAnalyzer(t, newFakeWordStore(), &stubDict{}, nil, analyzer)

		body, _ := json.Marshal(map[string]string{"text": "I have been learning English for two years."})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/sentence/analysis", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Likely mistranslation")
	})

	t.Run("responds 503 when not configured", func(t *testing.T) {
		router := setupWordsRouter(t, newFakeWordStore(), &stubDict{}, nil)

		body, _ := json.Marshal(map[string]string{"text": "any sentence at all"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/sentence/analysis", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestWordsController_GetWord_NotFound(t *testing.T) {
	router := setupWordsRouter(t, newFakeWordStore(), &stubDict{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/words/missing-noun", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWordsController_ListWords_IncludesMastery(t *testing.T) {
	store := newFakeWordStore()
	store.put(&entities.Entry{ID: "apple-noun", Word: "apple", PartOfSpeech: "noun", Interval: 30, ReviewCount: 8})
	store.put(&entities.Entry{ID: "brisk-adjective", Word: "brisk", PartOfSpeech: "adjective"})
	router := setupWordsRouter(t, store, &stubDict{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/words", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Words []wordView `json:"words"`
		Total int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 2, response.Total)

	tiers := map[string]srs.Tier{}
	for _, v := range response.Words {
		tiers[v.ID] = v.Mastery
	}
	assert.Equal(t, srs.TierMastered, tiers["apple-noun"])
	assert.Equal(t, srs.TierNew, tiers["brisk-adjective"])
}

func TestWordsController_GetStats(t *testing.T) {
	now := time.Now()
	store := newFakeWordStore()
	store.put(&entities.Entry{ID: "a-noun", Word: "a", Interval: 3, ReviewCount: 2, NextReviewAt: now.Add(-time.Hour)})
	store.put(&entities.Entry{ID: "b-noun", Word: "b", Interval: 10, ReviewCount: 4, NextReviewAt: now.Add(48 * time.Hour)})
	store.put(&entities.Entry{ID: "c-noun", Word: "c", NextReviewAt: now})
	router := setupWordsRouter(t, store, &stubDict{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/words/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Total   int              `json:"total"`
		Due     int              `json:"due"`
		New     int              `json:"new"`
		Mastery map[srs.Tier]int `json:"mastery"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Total)
	assert.Equal(t, 1, response.Due)
	assert.Equal(t, 1, response.New)
	assert.Equal(t, 1, response.Mastery[srs.TierNew])
	assert.Equal(t, 1, response.Mastery[srs.TierLearning])
	assert.Equal(t, 1, response.Mastery[srs.TierReviewing])
}

func TestWordsController_GenerateExample(t *testing.T) {
	store := newFakeWordStore()
	store.put(&entities.Entry{ID: "brisk-adjective", Word: "brisk", DefinitionEN: "active and energetic"})
	gen := &stubGenerator{example: "We took a brisk walk along the river."}
	router := setupWordsRouter(t, store, &stubDict{}, gen)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/words/brisk-adjective/example", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "We took a brisk walk along the river.", store.entries["brisk-adjective"].Example)
}

func TestWordsController_DeleteWord(t *testing.T) {
	store := newFakeWordStore()
	store.put(&entities.Entry{ID: "apple-noun", Word: "apple"})
	router := setupWordsRouter(t, store, &stubDict{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/words/apple-noun", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.entries)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/words/apple-noun", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
