// Package reading orchestrates the progress and stats repositories behind
// the student-facing endpoints. It owns no state of its own: every call is
// a short-lived request/response against the database.
package reading

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	progressdb "github.com/openshelf/openshelf/internal/database/progress"
	statsdb "github.com/openshelf/openshelf/internal/database/stats"
	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrInvalidChapter = errors.New("current_chapter must be a positive integer")
	ErrInvalidTotal   = errors.New("total_chapters must be a positive integer")
	ErrInvalidMinutes = errors.New("minutes must be a non-negative integer")
)

// Catalog is the book-lookup surface the service needs. Implemented by the
// books repository.
type Catalog interface {
	BookExists(id uint) (bool, error)
}

// Service composes the catalog check, the progress upsert and the stats
// update into the public save/read/add-time operations.
type Service struct {
	db       *gorm.DB
	progress *progressdb.Repository
	stats    *statsdb.Repository
	catalog  Catalog
}

// NewService creates a new reading service.
func NewService(db *gorm.DB, catalog Catalog) *Service {
	return &Service{
		db:       db,
		progress: progressdb.NewRepository(db),
		stats:    statsdb.NewRepository(db),
		catalog:  catalog,
	}
}

// SaveOutcome is the result of a progress write, echoed back to the caller.
type SaveOutcome struct {
	Created    bool
	Chapter    int
	Total      int
	Percentage int
}

// SaveProgress validates the input, upserts the progress record and folds
// the write into the user's stats.
//
// A totalChapters of zero means the caller omitted the field; the catalog
// default applies. The upsert and the stats update run in one transaction
// so the first-completion marker and the books-read counter cannot race a
// concurrent save for the same pair. A stats failure is logged and does not
// fail the request: the user's base progress always survives.
func (s *Service) SaveProgress(userID, bookID uint, currentChapter, totalChapters int) (*SaveOutcome, error) {
	if currentChapter < 1 {
		return nil, ErrInvalidChapter
	}
	if totalChapters == 0 {
		totalChapters = entities.DefaultTotalChapters
	}
	if totalChapters < 1 {
		return nil, ErrInvalidTotal
	}

	exists, err := s.catalog.BookExists(bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to check book: %w", err)
	}
	if !exists {
		return nil, ErrBookNotFound
	}

	var result *progressdb.SaveResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.progress.WithTx(tx).Save(userID, bookID, currentChapter, totalChapters)
		if err != nil {
			return err
		}

		if err := s.applyStats(tx, userID, result); err != nil {
			// Best effort: the base progress write must not be lost to a
			// stats bookkeeping failure.
			log.Printf("Stats update failed for user %d, book %d: %v", userID, bookID, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	return &SaveOutcome{
		Created:    result.Created,
		Chapter:    result.Record.CurrentChapter,
		Total:      result.Record.TotalChapters,
		Percentage: result.Record.ProgressPercentage,
	}, nil
}

// applyStats updates the user's stats row inside the save transaction,
// creating the row first if registration never did (e.g. admin accounts).
func (s *Service) applyStats(tx *gorm.DB, userID uint, result *progressdb.SaveResult) error {
	repo := s.stats.WithTx(tx)
	err := repo.ApplyProgressWrite(userID, result.FirstCompletion)
	if errors.Is(err, statsdb.ErrStatsNotFound) {
		if _, err := repo.CreateForUser(userID); err != nil {
			return err
		}
		return repo.ApplyProgressWrite(userID, result.FirstCompletion)
	}
	return err
}

// ListProgress returns the user's unfinished books joined with active
// catalog entries, most recently read first.
func (s *Service) ListProgress(userID uint) ([]progressdb.RecordWithBook, error) {
	return s.progress.ListInProgress(userID)
}

// AddReadingTime adds session minutes to the user's cumulative total. It is
// independent of chapter progress and never perturbs the completion latch.
func (s *Service) AddReadingTime(userID uint, minutes int) error {
	if minutes < 0 {
		return ErrInvalidMinutes
	}

	err := s.stats.AddReadingTime(userID, minutes)
	if errors.Is(err, statsdb.ErrStatsNotFound) {
		if _, err := s.stats.CreateForUser(userID); err != nil {
			return err
		}
		return s.stats.AddReadingTime(userID, minutes)
	}
	return err
}

// Stats returns the user's stats row, creating a zeroed one when missing.
func (s *Service) Stats(userID uint) (*entities.ReadingStats, error) {
	row, err := s.stats.GetForUser(userID)
	if errors.Is(err, statsdb.ErrStatsNotFound) {
		return s.stats.CreateForUser(userID)
	}
	return row, err
}
