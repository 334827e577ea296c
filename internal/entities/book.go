package entities

import (
	"time"
)

type BookStatus string

const (
	BookStatusActive   BookStatus = "active"
	BookStatusInactive BookStatus = "inactive"
)

type Book struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"index;size:512" json:"title"`
	Author      string     `gorm:"index;size:256" json:"author"`
	ISBN        string     `gorm:"uniqueIndex;size:20" json:"isbn"`
	Category    string     `gorm:"index;size:100" json:"category"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Status      BookStatus `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}
