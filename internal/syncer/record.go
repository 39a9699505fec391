package syncer

import (
	"time"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/feishu"
)

// Remote field names. The Bitable columns carry the entry's content and
// scheduling fields as scalars; timestamps travel as epoch milliseconds.
const (
	fieldUserID       = "user_id"
	fieldLocalID      = "local_id"
	fieldWord         = "word"
	fieldPhonetic     = "phonetic"
	fieldPartOfSpeech = "partOfSpeech"
	fieldDefinitionEN = "definitionEn"
	fieldDefinitionZH = "definitionZh"
	fieldExample      = "example"
	fieldInterval     = "interval"
	fieldEaseFactor   = "easeFactor"
	fieldNextReviewAt = "nextReviewAt"
	fieldReviewCount  = "reviewCount"
	fieldLastReviewAt = "lastReviewAt"
	fieldCreatedAt    = "createdAt"
	fieldUpdatedAt    = "updated_at"
)

// entryFields maps a local entry onto the flat remote record shape.
func entryFields(e *entities.Entry, userID string) map[string]any {
	fields := map[string]any{
		fieldUserID:       userID,
		fieldLocalID:      e.ID,
		fieldWord:         e.Word,
		fieldPhonetic:     e.Phonetic,
		fieldPartOfSpeech: e.PartOfSpeech,
		fieldDefinitionEN: e.DefinitionEN,
		fieldDefinitionZH: e.DefinitionZH,
		fieldExample:      e.Example,
		fieldInterval:     e.Interval,
		fieldEaseFactor:   e.EaseFactor,
		fieldNextReviewAt: e.NextReviewAt.UnixMilli(),
		fieldReviewCount:  e.ReviewCount,
		fieldCreatedAt:    e.CreatedAt.UnixMilli(),
	}
	if e.LastReviewAt != nil {
		fields[fieldLastReviewAt] = e.LastReviewAt.UnixMilli()
	} else {
		fields[fieldLastReviewAt] = ""
	}
	return fields
}

// entryFromRecord rebuilds an entry from a remote record, applying the
// never-reviewed defaults for any scheduling field the record lacks.
func entryFromRecord(rec feishu.Record, now time.Time) *entities.Entry {
	f := rec.Fields

	e := &entities.Entry{
		Word:         strField(f, fieldWord),
		Phonetic:     strField(f, fieldPhonetic),
		PartOfSpeech: strField(f, fieldPartOfSpeech),
		DefinitionEN: strField(f, fieldDefinitionEN),
		DefinitionZH: strField(f, fieldDefinitionZH),
		Example:      strField(f, fieldExample),
		Interval:     int(numField(f, fieldInterval, 0)),
		EaseFactor:   numField(f, fieldEaseFactor, entities.DefaultEaseFactor),
		ReviewCount:  int(numField(f, fieldReviewCount, 0)),
		NextReviewAt: millisField(f, fieldNextReviewAt, now),
		CreatedAt:    millisField(f, fieldCreatedAt, now),
	}
	e.ID = entities.EntryID(e.Word, e.PartOfSpeech)

	if ms := numField(f, fieldLastReviewAt, 0); ms > 0 {
		t := time.UnixMilli(int64(ms))
		e.LastReviewAt = &t
	}
	return e
}

// remoteUpdatedAt extracts the remote-side update timestamp used by the
// recency heuristic, zero when absent or unparseable.
func remoteUpdatedAt(rec feishu.Record) time.Time {
	switch v := rec.Fields[fieldUpdatedAt].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	case float64:
		return time.UnixMilli(int64(v))
	case int64:
		return time.UnixMilli(v)
	}
	return time.Time{}
}

func strField(f map[string]any, key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// numField coerces a numeric remote value, which arrives as float64
// from JSON but may also be a stringified number or absent.
func numField(f map[string]any, key string, def float64) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func millisField(f map[string]any, key string, def time.Time) time.Time {
	if ms := numField(f, key, 0); ms > 0 {
		return time.UnixMilli(int64(ms))
	}
	return def
}
