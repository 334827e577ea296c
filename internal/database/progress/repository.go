// Package progress provides database operations for per-user, per-book
// reading progress. It owns the upsert that keeps chapter, total and
// percentage consistent, and the "continue reading" listing consumed by
// the student UI.
package progress

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles all reading-progress database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new progress repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction. Used by the
// progress service to run the upsert and the stats update as one unit.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// SaveResult describes the outcome of a progress write.
type SaveResult struct {
	Record *entities.ReadingProgress

	// Created is true when no record existed for the (user, book) pair.
	Created bool

	// FirstCompletion is true only on the write that completes the pair for
	// the first time ever. Regressing below 100% and finishing again does
	// not raise it a second time; the books-read latch in the stats
	// repository fires only when this is set.
	FirstCompletion bool
}

// Save upserts the progress record for a (user, book) pair.
//
// Completion is a one-way latch: CompletedAt is set on the first write that
// reaches 100% and never cleared afterwards. Callers running Save in a
// transaction get an atomic read-modify-write, so the FirstCompletion flag
// reflects exactly the transition this write caused.
func (r *Repository) Save(userID, bookID uint, currentChapter, totalChapters int) (*SaveResult, error) {
	percentage := entities.ProgressPercent(currentChapter, totalChapters)
	now := time.Now()

	var existing entities.ReadingProgress
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := &entities.ReadingProgress{
			UserID:             userID,
			BookID:             bookID,
			CurrentChapter:     currentChapter,
			TotalChapters:      totalChapters,
			ProgressPercentage: percentage,
			LastRead:           now,
		}
		if record.IsCompleted() {
			record.CompletedAt = &now
		}
		if err := r.db.Create(record).Error; err != nil {
			return nil, err
		}
		return &SaveResult{
			Record:          record,
			Created:         true,
			FirstCompletion: record.CompletedAt != nil,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	existing.CurrentChapter = currentChapter
	existing.TotalChapters = totalChapters
	existing.ProgressPercentage = percentage
	existing.LastRead = now

	firstCompletion := existing.CompletedAt == nil && existing.IsCompleted()
	if firstCompletion {
		existing.CompletedAt = &now
	}

	if err := r.db.Save(&existing).Error; err != nil {
		return nil, err
	}

	return &SaveResult{
		Record:          &existing,
		FirstCompletion: firstCompletion,
	}, nil
}

// RecordWithBook is a progress row joined with its book's catalog fields,
// as returned by the reading-progress endpoint.
type RecordWithBook struct {
	ID                 uint      `json:"id"`
	BookID             uint      `json:"book_id"`
	CurrentChapter     int       `json:"current_chapter"`
	TotalChapters      int       `json:"total_chapters"`
	ProgressPercentage int       `json:"progress_percentage"`
	LastRead           time.Time `json:"last_read"`
	Title              string    `json:"title"`
	Author             string    `json:"author"`
	Category           string    `json:"category"`
	ISBN               string    `json:"isbn"`
	Status             string    `json:"status"`
}

// ListInProgress returns a user's unfinished books (percentage < 100) joined
// with active catalog entries, most recently read first.
func (r *Repository) ListInProgress(userID uint) ([]RecordWithBook, error) {
	var records []RecordWithBook
	err := r.db.Table("reading_progress").
		Select(`reading_progress.id, reading_progress.book_id,
			reading_progress.current_chapter, reading_progress.total_chapters,
			reading_progress.progress_percentage, reading_progress.last_read,
			books.title, books.author, books.category, books.isbn, books.status`).
		Joins("INNER JOIN books ON books.id = reading_progress.book_id").
		Where("reading_progress.user_id = ?", userID).
		Where("reading_progress.progress_percentage < ?", 100).
		Where("books.status = ?", entities.BookStatusActive).
		Order("reading_progress.last_read DESC").
		Scan(&records).Error
	return records, err
}

// GetRecord loads the progress record for a (user, book) pair, or nil when
// none exists.
func (r *Repository) GetRecord(userID, bookID uint) (*entities.ReadingProgress, error) {
	var record entities.ReadingProgress
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CountCompleted returns how many distinct books a user has ever finished.
// It counts the one-way CompletedAt marker, not the current percentage, so
// the recount task and the write-time latch agree even for books that were
// regressed after completion.
func (r *Repository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingProgress{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Count(&count).Error
	return count, err
}
