package entities

import (
	"math"
	"time"
)

// DefaultTotalChapters is used when a progress write omits the chapter count.
const DefaultTotalChapters = 12

// ReadingProgress tracks how far a user has read into a book.
// There is at most one row per (user, book) pair; the percentage is always
// recomputed from chapter/total on write, never stored independently.
// CompletedAt is set the first time the pair reaches 100% and never cleared,
// even if the chapter later moves backwards.
type ReadingProgress struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"index;uniqueIndex:idx_user_book" json:"user_id"`
	BookID             uint       `gorm:"index;uniqueIndex:idx_user_book" json:"book_id"`
	CurrentChapter     int        `json:"current_chapter"`
	TotalChapters      int        `json:"total_chapters"`
	ProgressPercentage int        `json:"progress_percentage"`
	LastRead           time.Time  `json:"last_read"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}

// IsCompleted reports whether the record marks the book as fully read.
func (p *ReadingProgress) IsCompleted() bool {
	return p.ProgressPercentage >= 100
}

// ProgressPercent computes the rounded completion percentage for a
// chapter/total pair, capped at 100 when the chapter runs past the total.
func ProgressPercent(currentChapter, totalChapters int) int {
	pct := int(math.Round(float64(currentChapter) / float64(totalChapters) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}
