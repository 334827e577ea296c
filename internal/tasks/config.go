package tasks

import "time"

// Config tunes the queue client. Per-queue settings (attempts, timeout,
// retention) live with each task type; this only covers the shared worker
// pool and housekeeping.
type Config struct {
	// Workers is the number of concurrent task workers. The only queue is
	// the admin-triggered stats recount, so one worker is enough. Default: 1
	Workers int

	// ReleaseAfter is when a claimed task is handed back to the queue.
	// Must exceed the longest queue timeout or a slow recount gets
	// claimed twice. Default: 20m
	ReleaseAfter time.Duration

	// CleanupInterval is how often expired task rows are purged.
	// Recounts are rare, so this can be infrequent. Default: 6h
	CleanupInterval time.Duration
}

// DefaultConfig returns a Config tuned for the maintenance workload.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		ReleaseAfter:    20 * time.Minute,
		CleanupInterval: 6 * time.Hour,
	}
}
