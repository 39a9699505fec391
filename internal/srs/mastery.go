package srs

// Tier is the coarse mastery classification shown next to an entry and
// used by the selection policy's statistics.
type Tier string

const (
	TierNew       Tier = "new"
	TierLearning  Tier = "learning"
	TierReviewing Tier = "reviewing"
	TierMastered  Tier = "mastered"
)

// Classify maps an entry's interval and review count onto a mastery
// tier. An entry that was never rated is new regardless of interval;
// intervals of 7 and 21 days already belong to the next tier up.
func Classify(interval, reviewCount int) Tier {
	if reviewCount == 0 {
		return TierNew
	}
	if interval < 7 {
		return TierLearning
	}
	if interval < 21 {
		return TierReviewing
	}
	return TierMastered
}
