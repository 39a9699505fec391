package tasks

import "time"

// Config sizes the enrichment queue runtime. Retry and retention
// policy live on each queue's own backlite.QueueConfig (see
// TranslateEntryTask.Config), not here.
type Config struct {
	// Workers is how many translations may run concurrently. The
	// upstream translator is rate limited, so this stays small.
	Workers int

	// ReleaseAfter is how long a claimed task may sit before it is
	// assumed stuck and handed back to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks past their
	// retention are purged.
	CleanupInterval time.Duration
}

// DefaultConfig returns the queue sizing used when nothing is
// configured.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}
