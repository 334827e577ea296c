package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"
)

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	return r == UserRoleStudent || r == UserRoleAdmin
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Role         UserRole  `gorm:"size:20;default:'student'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ReadingStats is the per-user aggregate row maintained by the stats
// repository. One row per user, created at registration time.
type ReadingStats struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex" json:"user_id"`
	BooksRead        int       `gorm:"default:0" json:"books_read"`
	TotalReadingTime int       `gorm:"default:0" json:"total_reading_time"` // minutes
	CurrentStreak    int       `gorm:"default:0" json:"current_streak"`
	BadgesEarned     int       `gorm:"default:0" json:"badges_earned"`
	LastUpdated      time.Time `json:"last_updated"`
}

func (ReadingStats) TableName() string {
	return "reading_stats"
}
