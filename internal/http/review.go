package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/vocadex/vocadex/internal/review"
	"github.com/vocadex/vocadex/internal/srs"
)

// ReviewController exposes the single active review session. Starting a
// new session replaces whatever session was in progress.
type ReviewController struct {
	store review.Store

	mu      sync.Mutex
	session *review.Session
}

func NewReviewController(store review.Store) *ReviewController {
	return &ReviewController{store: store}
}

// RateRequest is the request body for rating the current card.
type RateRequest struct {
	Rating string `json:"rating" binding:"required"`
}

// sessionView renders session state for the client.
func sessionView(s *review.Session) gin.H {
	reviewed, total := s.Progress()
	view := gin.H{
		"mode":     s.Mode(),
		"complete": s.Complete(),
		"reviewed": reviewed,
		"total":    total,
	}
	if current, ok := s.Current(); ok {
		view["current"] = toWordView(*current)
	}
	return view
}

// StartSession builds a fresh due-first session.
// POST /api/review/session
func (rc *ReviewController) StartSession(c *gin.Context) {
	session, err := review.NewSession(rc.store)
	if err != nil {
		respondInternalError(c, err, "start review session")
		return
	}

	rc.mu.Lock()
	rc.session = session
	rc.mu.Unlock()

	respondCreated(c, sessionView(session))
}

// GetSession returns the active session state and current card.
// GET /api/review/session
func (rc *ReviewController) GetSession(c *gin.Context) {
	session := rc.current()
	if session == nil {
		respondNotFound(c, "review session")
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

// Rate applies a rating to the current card and advances the queue.
// POST /api/review/rate
func (rc *ReviewController) Rate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	rating, err := srs.ParseRating(req.Rating)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	session := rc.current()
	if session == nil {
		respondNotFound(c, "review session")
		return
	}

	if err := session.Rate(rating); err != nil {
		if errors.Is(err, review.ErrSessionComplete) {
			respondError(c, http.StatusConflict, "review session complete")
			return
		}
		respondInternalError(c, err, "rate word")
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

// ContinueAll switches a finished due session into all mode.
// POST /api/review/continue-all
func (rc *ReviewController) ContinueAll(c *gin.Context) {
	rc.transition(c, func(s *review.Session) error { return s.ContinueAll() })
}

// Restart rebuilds a finished all-mode session from scratch.
// POST /api/review/restart
func (rc *ReviewController) Restart(c *gin.Context) {
	rc.transition(c, func(s *review.Session) error { return s.Restart() })
}

// GetQueue reports how much work is waiting without starting a session.
// GET /api/review/queue
func (rc *ReviewController) GetQueue(c *gin.Context) {
	entries, err := rc.store.GetAll()
	if err != nil {
		respondInternalError(c, err, "review queue")
		return
	}

	stats := review.Stats(entries, timeNow())
	c.JSON(http.StatusOK, gin.H{
		"due":   stats.Due,
		"new":   stats.New,
		"total": stats.Total,
	})
}

func (rc *ReviewController) current() *review.Session {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.session
}

func (rc *ReviewController) transition(c *gin.Context, fn func(*review.Session) error) {
	session := rc.current()
	if session == nil {
		respondNotFound(c, "review session")
		return
	}

	if err := fn(session); err != nil {
		if errors.Is(err, review.ErrNotComplete) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondInternalError(c, err, "review transition")
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}
