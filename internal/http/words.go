package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/review"
	"github.com/vocadex/vocadex/internal/services"
	"github.com/vocadex/vocadex/internal/srs"
)

// WordStore defines database operations for word management.
type WordStore interface {
	GetAll() ([]entities.Entry, error)
	GetByID(id string) (*entities.Entry, error)
	Search(query string, limit int) ([]entities.Entry, error)
	SetExample(id, example string) error
	Delete(id string) error
}

// ExampleGenerator produces an example sentence for a word.
type ExampleGenerator interface {
	GenerateExample(ctx context.Context, word, definition string) (string, error)
}

// SentenceAnalyzer produces a study breakdown of a full sentence.
type SentenceAnalyzer interface {
	AnalyzeSentence(ctx context.Context, sentence string) (string, error)
}

type WordsController struct {
	store     WordStore
	lookup    *services.LookupService
	sentences *services.SentenceService
	generator ExampleGenerator
	analyzer  SentenceAnalyzer
}

func NewWordsController(store WordStore, lookup *services.LookupService, sentences *services.SentenceService, generator ExampleGenerator, analyzer SentenceAnalyzer) *WordsController {
	return &WordsController{
		store:     store,
		lookup:    lookup,
		sentences: sentences,
		generator: generator,
		analyzer:  analyzer,
	}
}

// wordView is the API shape of an entry, with the derived mastery tier.
type wordView struct {
	entities.Entry
	Mastery srs.Tier `json:"mastery"`
}

func toWordView(e entities.Entry) wordView {
	return wordView{Entry: e, Mastery: srs.Classify(e.Interval, e.ReviewCount)}
}

// AddWordRequest is the request body for adding a word.
type AddWordRequest struct {
	Word string `json:"word" binding:"required"`
}

// ListWords returns the collection, newest first.
// GET /api/words
func (wc *WordsController) ListWords(c *gin.Context) {
	entries, err := wc.store.GetAll()
	if err != nil {
		respondInternalError(c, err, "list words")
		return
	}

	items := make([]wordView, len(entries))
	for i, e := range entries {
		items[i] = toWordView(e)
	}

	c.JSON(http.StatusOK, gin.H{"words": items, "total": len(items)})
}

// AddWord looks the word up in the dictionary and stores it.
// POST /api/words
func (wc *WordsController) AddWord(c *gin.Context) {
	var req AddWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	entry, err := wc.lookup.LookupAndSave(c.Request.Context(), req.Word)
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	respondCreated(c, gin.H{"word": toWordView(*entry)})
}

// GetWord returns a single entry by its identity key.
// GET /api/words/:id
func (wc *WordsController) GetWord(c *gin.Context) {
	entry, err := wc.store.GetByID(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "get word")
		return
	}
	if entry == nil {
		respondNotFound(c, "word")
		return
	}

	c.JSON(http.StatusOK, gin.H{"word": toWordView(*entry)})
}

// SearchWords matches against the word text.
// GET /api/words/search?q=...
func (wc *WordsController) SearchWords(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	entries, err := wc.store.Search(query, limit)
	if err != nil {
		respondInternalError(c, err, "search words")
		return
	}

	items := make([]wordView, len(entries))
	for i, e := range entries {
		items[i] = toWordView(e)
	}

	c.JSON(http.StatusOK, gin.H{"words": items})
}

// GetStats reports queue counts and the mastery breakdown.
// GET /api/words/stats
func (wc *WordsController) GetStats(c *gin.Context) {
	entries, err := wc.store.GetAll()
	if err != nil {
		respondInternalError(c, err, "word stats")
		return
	}

	queue := review.Stats(entries, timeNow())

	tiers := map[srs.Tier]int{
		srs.TierNew:       0,
		srs.TierLearning:  0,
		srs.TierReviewing: 0,
		srs.TierMastered:  0,
	}
	for _, e := range entries {
		tiers[srs.Classify(e.Interval, e.ReviewCount)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   queue.Total,
		"due":     queue.Due,
		"new":     queue.New,
		"mastery": tiers,
	})
}

// DeleteWord removes an entry from the collection.
// DELETE /api/words/:id
func (wc *WordsController) DeleteWord(c *gin.Context) {
	id := c.Param("id")

	entry, err := wc.store.GetByID(id)
	if err != nil {
		respondInternalError(c, err, "delete word")
		return
	}
	if entry == nil {
		respondNotFound(c, "word")
		return
	}

	if err := wc.store.Delete(id); err != nil {
		respondInternalError(c, err, "delete word")
		return
	}

	respondSuccess(c, "word deleted")
}

// Lookup returns the dictionary's primary sense without saving.
// GET /api/lookup/:word
func (wc *WordsController) Lookup(c *gin.Context) {
	result, err := wc.lookup.Lookup(c.Request.Context(), c.Param("word"))
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// LookupTextRequest carries a word or a whole sentence to resolve.
type LookupTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// LookupText dispatches on the shape of the input: three or more
// words are analysed as a sentence, anything shorter is a single-word
// lookup. Nothing is saved either way.
// POST /api/lookup
func (wc *WordsController) LookupText(c *gin.Context) {
	var req LookupTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if services.IsSentence(req.Text) {
		if wc.sentences == nil {
			respondError(c, http.StatusServiceUnavailable, "sentence lookup not configured")
			return
		}
		result, err := wc.sentences.Analyze(c.Request.Context(), req.Text)
		if err != nil {
			if errors.Is(err, services.ErrSentenceTooLong) {
				respondBadRequest(c, err.Error())
				return
			}
			respondError(c, http.StatusBadGateway, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"sentence": result})
		return
	}

	result, err := wc.lookup.Lookup(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// AnalyzeSentence asks the AI backend for the contrastive study
// breakdown of a sentence.
// POST /api/sentence/analysis
func (wc *WordsController) AnalyzeSentence(c *gin.Context) {
	if wc.analyzer == nil {
		respondError(c, http.StatusServiceUnavailable, "sentence analysis not configured")
		return
	}

	var req LookupTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	analysis, err := wc.analyzer.AnalyzeSentence(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

// GenerateExample asks the AI backend for an example sentence and
// stores it on the entry.
// POST /api/words/:id/example
func (wc *WordsController) GenerateExample(c *gin.Context) {
	if wc.generator == nil {
		respondError(c, http.StatusServiceUnavailable, "example generation not configured")
		return
	}

	entry, err := wc.store.GetByID(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "generate example")
		return
	}
	if entry == nil {
		respondNotFound(c, "word")
		return
	}

	example, err := wc.generator.GenerateExample(c.Request.Context(), entry.Word, entry.DefinitionEN)
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	if err := wc.store.SetExample(entry.ID, example); err != nil {
		respondInternalError(c, err, "generate example")
		return
	}

	c.JSON(http.StatusOK, gin.H{"example": example})
}
