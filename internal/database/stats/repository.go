// Package stats provides database operations for per-user reading
// statistics: lifetime books-read count, cumulative reading time and the
// consecutive-day streak.
//
// The books-read counter is guarded by a one-way latch: a (user, book) pair
// contributes at most one increment, driven by the first-completion marker
// persisted by the progress repository.
package stats

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// StreakWindow is the maximum gap between two updates that still counts as
// a continued streak.
const StreakWindow = 24 * time.Hour

var ErrStatsNotFound = errors.New("reading stats not found")

// Repository handles all reading-stats database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateForUser creates the zeroed stats row for a newly registered user.
// Safe to call again for the same user; an existing row is left untouched.
func (r *Repository) CreateForUser(userID uint) (*entities.ReadingStats, error) {
	var existing entities.ReadingStats
	err := r.db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := &entities.ReadingStats{
		UserID:      userID,
		LastUpdated: time.Now(),
	}
	if err := r.db.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// GetForUser returns a user's stats row.
func (r *Repository) GetForUser(userID uint) (*entities.ReadingStats, error) {
	var row entities.ReadingStats
	err := r.db.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ApplyProgressWrite folds a progress write into the user's stats row.
//
// The books-read counter increments only when the progress repository
// reports the pair's first-ever completion, so a (user, book) pair can
// never contribute more than one increment. The streak updates on every
// write: a gap of at most StreakWindow since the previous update extends
// it, anything longer resets it to 1.
func (r *Repository) ApplyProgressWrite(userID uint, firstCompletion bool) error {
	var row entities.ReadingStats
	err := r.db.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStatsNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now()

	if firstCompletion {
		row.BooksRead++
	}

	if now.Sub(row.LastUpdated) <= StreakWindow {
		row.CurrentStreak++
	} else {
		row.CurrentStreak = 1
	}
	row.LastUpdated = now

	return r.db.Save(&row).Error
}

// AddReadingTime adds minutes to the cumulative reading-time counter and
// refreshes the activity timestamp. It never touches the books-read latch.
func (r *Repository) AddReadingTime(userID uint, minutes int) error {
	result := r.db.Model(&entities.ReadingStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_reading_time": gorm.Expr("total_reading_time + ?", minutes),
			"last_updated":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatsNotFound
	}
	return nil
}

// SweepExpiredStreaks zeroes the streak of every user whose last activity is
// older than the streak window. The activity timestamp is deliberately left
// alone so the next progress write still sees the true gap.
func (r *Repository) SweepExpiredStreaks() (int64, error) {
	cutoff := time.Now().Add(-StreakWindow)
	result := r.db.Model(&entities.ReadingStats{}).
		Where("current_streak > 0 AND last_updated < ?", cutoff).
		Update("current_streak", 0)
	return result.RowsAffected, result.Error
}

// SetBooksRead overwrites the books-read counter. Used by the recount task
// to repair counters that drifted before the completion latch existed.
func (r *Repository) SetBooksRead(userID uint, booksRead int) error {
	result := r.db.Model(&entities.ReadingStats{}).
		Where("user_id = ?", userID).
		Update("books_read", booksRead)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatsNotFound
	}
	return nil
}

// AllUserIDs returns the user IDs of every stats row.
func (r *Repository) AllUserIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.ReadingStats{}).Pluck("user_id", &ids).Error
	return ids, err
}
