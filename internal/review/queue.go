// Package review builds review queues from the stored entries and
// drives the card-by-card review session.
package review

import (
	"sort"
	"time"

	"github.com/vocadex/vocadex/internal/entities"
)

// SelectDue partitions entries into due and new and returns the review
// queue: due entries first, most overdue leading, followed by new
// entries with the most recently added leading. Entries that were
// reviewed but are not yet due are excluded.
func SelectDue(entries []entities.Entry, now time.Time) []entities.Entry {
	var due, fresh []entities.Entry
	for _, e := range entries {
		switch {
		case e.IsDue(now):
			due = append(due, e)
		case e.IsNew():
			fresh = append(fresh, e)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].CreatedAt.After(fresh[j].CreatedAt)
	})

	return append(due, fresh...)
}

// SelectAll returns every entry ordered by next review time, used when
// the user keeps reviewing beyond what is strictly due.
func SelectAll(entries []entities.Entry) []entities.Entry {
	all := make([]entities.Entry, len(entries))
	copy(all, entries)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].NextReviewAt.Before(all[j].NextReviewAt)
	})
	return all
}

// QueueStats summarises the collection for display.
type QueueStats struct {
	Due   int `json:"due"`
	New   int `json:"new"`
	Total int `json:"total"`
}

// Stats counts due, new and total entries using the same partition as
// SelectDue.
func Stats(entries []entities.Entry, now time.Time) QueueStats {
	s := QueueStats{Total: len(entries)}
	for _, e := range entries {
		if e.IsDue(now) {
			s.Due++
		}
		if e.IsNew() {
			s.New++
		}
	}
	return s
}
