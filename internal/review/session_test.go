package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/srs"
)

// fakeStore keeps entries in memory and mimics the repository's review
// bookkeeping.
type fakeStore struct {
	entries map[string]*entities.Entry
	rated   []string
}

func newFakeStore(entries ...entities.Entry) *fakeStore {
	s := &fakeStore{entries: make(map[string]*entities.Entry)}
	for i := range entries {
		e := entries[i]
		s.entries[e.ID] = &e
	}
	return s
}

func (s *fakeStore) GetAll() ([]entities.Entry, error) {
	var list []entities.Entry
	for _, e := range s.entries {
		list = append(list, *e)
	}
	return list, nil
}

func (s *fakeStore) ApplyReview(id string, next srs.State, now time.Time) error {
	e := s.entries[id]
	e.Interval = next.Interval
	e.EaseFactor = next.EaseFactor
	e.NextReviewAt = next.NextReviewAt
	e.ReviewCount++
	e.LastReviewAt = &now
	s.rated = append(s.rated, id)
	return nil
}

func TestSession_WalksDueQueueToCompletion(t *testing.T) {
	day := 24 * time.Hour
	store := newFakeStore(
		entry("alpha-noun", 1, now.Add(-2*day), now.Add(-10*day)),
		entry("beta-noun", 0, now, now.Add(-day)),
	)

	session, err := NewSession(store)
	require.NoError(t, err)
	session.now = func() time.Time { return now }
	require.NoError(t, session.load(ModeDue))

	assert.Equal(t, ModeDue, session.Mode())
	assert.False(t, session.Complete())

	current, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, "alpha-noun", current.ID)

	require.NoError(t, session.Rate(srs.RatingMedium))
	current, ok = session.Current()
	require.True(t, ok)
	assert.Equal(t, "beta-noun", current.ID)

	require.NoError(t, session.Rate(srs.RatingEasy))
	assert.True(t, session.Complete())

	_, ok = session.Current()
	assert.False(t, ok)
	assert.Equal(t, []string{"alpha-noun", "beta-noun"}, store.rated)

	err = session.Rate(srs.RatingHard)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestSession_RatePersistsSchedulingState(t *testing.T) {
	store := newFakeStore(entry("gamma-noun", 0, now, now))

	session, err := NewSession(store)
	require.NoError(t, err)
	session.now = func() time.Time { return now }
	require.NoError(t, session.load(ModeDue))

	require.NoError(t, session.Rate(srs.RatingHard))

	e := store.entries["gamma-noun"]
	assert.Equal(t, 1, e.Interval, "bootstrap step regardless of rating")
	assert.Equal(t, entities.DefaultEaseFactor, e.EaseFactor)
	assert.Equal(t, 1, e.ReviewCount)
	require.NotNil(t, e.LastReviewAt)
	assert.Equal(t, now, *e.LastReviewAt)
}

func TestSession_ContinueAllFromDueComplete(t *testing.T) {
	day := 24 * time.Hour
	store := newFakeStore(
		entry("due-noun", 1, now.Add(-day), now),
		entry("scheduled-noun", 1, now.Add(5*day), now),
	)

	session, err := NewSession(store)
	require.NoError(t, err)
	session.now = func() time.Time { return now }
	require.NoError(t, session.load(ModeDue))

	// Only the due entry is queued; the scheduled one waits for all mode.
	_, total := session.Progress()
	assert.Equal(t, 1, total)

	err = session.ContinueAll()
	assert.ErrorIs(t, err, ErrNotComplete, "mode switch requires a finished session")

	require.NoError(t, session.Rate(srs.RatingMedium))
	require.True(t, session.Complete())

	require.NoError(t, session.ContinueAll())
	assert.Equal(t, ModeAll, session.Mode())
	assert.False(t, session.Complete())

	_, total = session.Progress()
	assert.Equal(t, 2, total, "all mode queues the whole collection")
}

func TestSession_RestartFromAllComplete(t *testing.T) {
	store := newFakeStore(entry("solo-noun", 1, now.Add(-time.Hour), now))

	session, err := NewSession(store)
	require.NoError(t, err)
	session.now = func() time.Time { return now }
	require.NoError(t, session.load(ModeAll))

	err = session.Restart()
	assert.ErrorIs(t, err, ErrNotComplete)

	require.NoError(t, session.Rate(srs.RatingEasy))
	require.True(t, session.Complete())

	require.NoError(t, session.Restart())
	assert.Equal(t, ModeDue, session.Mode())
}

func TestSession_EmptyQueueIsImmediatelyComplete(t *testing.T) {
	session, err := NewSession(newFakeStore())
	require.NoError(t, err)

	assert.True(t, session.Complete())
	_, ok := session.Current()
	assert.False(t, ok)
}
