package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CompletionCounter counts a user's finished books from the progress rows.
// Implemented by the progress repository.
type CompletionCounter interface {
	CountCompleted(userID uint) (int64, error)
}

// StatsRewriter repairs stats counters. Implemented by the stats repository.
type StatsRewriter interface {
	AllUserIDs() ([]uint, error)
	SetBooksRead(userID uint, booksRead int) error
}

// RecountBooksReadTask recomputes every user's books-read counter from
// their completed progress rows. Counters written before the completion
// latch existed can be off; this task brings them back in line.
type RecountBooksReadTask struct{}

// Config returns the queue configuration for recount tasks. A single
// attempt: a failed recount leaves counters as they were, and the admin
// can simply trigger it again. The timeout allows a full pass over every
// stats row on a slow disk.
func (t RecountBooksReadTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recount_books_read",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   72 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RecountBooksReadProcessor creates a processor function for
// RecountBooksReadTask.
func RecountBooksReadProcessor(counter CompletionCounter, rewriter StatsRewriter) backlite.QueueProcessor[RecountBooksReadTask] {
	return func(ctx context.Context, task RecountBooksReadTask) error {
		if counter == nil || rewriter == nil {
			return fmt.Errorf("recount dependencies not configured")
		}

		userIDs, err := rewriter.AllUserIDs()
		if err != nil {
			return fmt.Errorf("list stats rows: %w", err)
		}

		var repaired int
		for _, userID := range userIDs {
			completed, err := counter.CountCompleted(userID)
			if err != nil {
				return fmt.Errorf("count completed books for user %d: %w", userID, err)
			}
			if err := rewriter.SetBooksRead(userID, int(completed)); err != nil {
				return fmt.Errorf("rewrite books_read for user %d: %w", userID, err)
			}
			repaired++
		}

		log.Printf("[TASK] Recounted books_read for %d users", repaired)
		return nil
	}
}

// NewRecountBooksReadQueue creates a backlite queue for recount tasks.
func NewRecountBooksReadQueue(counter CompletionCounter, rewriter StatsRewriter) backlite.Queue {
	return backlite.NewQueue(RecountBooksReadProcessor(counter, rewriter))
}
