// Package srs implements the SM-2 style spaced-repetition scheduling
// used for review planning. All functions are pure: given the same
// state, rating and clock they return the same result.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/vocadex/vocadex/internal/entities"
)

// Rating is the user's self-assessment of a flashcard answer.
type Rating string

const (
	RatingHard   Rating = "hard"   // did not recall
	RatingMedium Rating = "medium" // recalled with effort
	RatingEasy   Rating = "easy"   // recalled instantly
)

// ParseRating validates a rating received over the wire.
func ParseRating(s string) (Rating, error) {
	switch Rating(s) {
	case RatingHard, RatingMedium, RatingEasy:
		return Rating(s), nil
	}
	return "", fmt.Errorf("invalid rating %q", s)
}

// State is the scheduling portion of an entry. The review count and
// last-review timestamp are deliberately not part of it: the caller
// applies those after a rating (see words.Repository.ApplyReview).
type State struct {
	Interval     int     // days, 0 means never reviewed
	EaseFactor   float64 // floor-clamped at entities.MinEaseFactor
	NextReviewAt time.Time
}

// Next computes the state after rating a card at the given time.
//
// The very first review (Interval == 0) is a fixed bootstrap step: one
// day out with the ease factor reset to its default, whatever the
// rating and whatever ease was stored. After that:
//
//	hard:   ease -= 0.2 (min 1.3), interval halved
//	medium: interval *= ease
//	easy:   ease += 0.1, interval *= ease * 1.3 using the bumped ease
//
// The interval never drops below one day.
func Next(cur State, r Rating, now time.Time) State {
	if cur.Interval == 0 {
		return State{
			Interval:     1,
			EaseFactor:   entities.DefaultEaseFactor,
			NextReviewAt: now.Add(24 * time.Hour),
		}
	}

	interval := cur.Interval
	ease := cur.EaseFactor

	switch r {
	case RatingHard:
		ease = math.Max(entities.MinEaseFactor, ease-0.2)
		interval = max(1, int(math.Floor(float64(interval)*0.5)))
	case RatingMedium:
		interval = max(1, int(math.Floor(float64(interval)*ease)))
	case RatingEasy:
		// The ease bump feeds into the same interval computation.
		ease += 0.1
		interval = int(math.Floor(float64(interval) * ease * 1.3))
	}

	interval = max(1, interval)

	return State{
		Interval:     interval,
		EaseFactor:   ease,
		NextReviewAt: now.Add(time.Duration(interval) * 24 * time.Hour),
	}
}
