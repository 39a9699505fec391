package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/srs"
)

// fakeReviewStore implements review.Store over a fixed slice.
type fakeReviewStore struct {
	entries []entities.Entry
	applied []string
}

func (f *fakeReviewStore) GetAll() ([]entities.Entry, error) {
	out := make([]entities.Entry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeReviewStore) ApplyReview(id string, next srs.State, now time.Time) error {
	f.applied = append(f.applied, id)
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Interval = next.Interval
			f.entries[i].EaseFactor = next.EaseFactor
			f.entries[i].NextReviewAt = next.NextReviewAt
			f.entries[i].ReviewCount++
		}
	}
	return nil
}

func setupReviewRouter(t *testing.T, store *fakeReviewStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	controller := NewReviewController(store)

	router := gin.New()
	router.POST("/api/review/session", controller.StartSession)
	router.GET("/api/review/session", controller.GetSession)
	router.POST("/api/review/rate", controller.Rate)
	router.POST("/api/review/continue-all", controller.ContinueAll)
	router.POST("/api/review/restart", controller.Restart)
	router.GET("/api/review/queue", controller.GetQueue)
	return router
}

type sessionResponse struct {
	Mode     string    `json:"mode"`
	Complete bool      `json:"complete"`
	Reviewed int       `json:"reviewed"`
	Total    int       `json:"total"`
	Current  *wordView `json:"current"`
}

func rateBody(t *testing.T, rating string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(RateRequest{Rating: rating})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestReviewController_SessionLifecycle(t *testing.T) {
	now := time.Now()
	store := &fakeReviewStore{entries: []entities.Entry{
		{ID: "apple-noun", Word: "apple", Interval: 2, EaseFactor: 2.5, ReviewCount: 3, NextReviewAt: now.Add(-time.Hour)},
		{ID: "brisk-adjective", Word: "brisk", EaseFactor: 2.5, NextReviewAt: now, CreatedAt: now},
	}}
	router := setupReviewRouter(t, store)

	// No session yet
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/review/session", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Start a due session: the due word comes before the new one
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/review/session", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var session sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "due", session.Mode)
	assert.Equal(t, 2, session.Total)
	require.NotNil(t, session.Current)
	assert.Equal(t, "apple-noun", session.Current.ID)

	// Rate both cards
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("POST", "/api/review/rate", rateBody(t, "medium"))
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.True(t, session.Complete)
	assert.Equal(t, []string{"apple-noun", "brisk-adjective"}, store.applied)

	// Rating past the end conflicts
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/review/rate", rateBody(t, "easy"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Continue into all mode
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/review/continue-all", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "all", session.Mode)
	assert.Equal(t, 2, session.Total)
	assert.False(t, session.Complete)
}

func TestReviewController_RateRejectsUnknownRating(t *testing.T) {
	store := &fakeReviewStore{}
	router := setupReviewRouter(t, store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/review/session", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/review/rate", rateBody(t, "impossible"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewController_TransitionsRequireCompletion(t *testing.T) {
	now := time.Now()
	store := &fakeReviewStore{entries: []entities.Entry{
		{ID: "apple-noun", Word: "apple", Interval: 2, EaseFactor: 2.5, ReviewCount: 3, NextReviewAt: now.Add(-time.Hour)},
	}}
	router := setupReviewRouter(t, store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/review/session", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/review/continue-all", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/review/restart", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewController_GetQueue(t *testing.T) {
	now := time.Now()
	store := &fakeReviewStore{entries: []entities.Entry{
		{ID: "apple-noun", ReviewCount: 2, NextReviewAt: now.Add(-time.Minute)},
		{ID: "brisk-adjective", NextReviewAt: now},
		{ID: "crisp-adjective", ReviewCount: 1, NextReviewAt: now.Add(24 * time.Hour)},
	}}
	router := setupReviewRouter(t, store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/review/queue", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Due   int `json:"due"`
		New   int `json:"new"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Due)
	assert.Equal(t, 1, response.New)
	assert.Equal(t, 3, response.Total)
}
