// Package books provides database operations for the book catalog.
//
// This package implements the BookStore interface defined in
// internal/http/books.go and the catalog-lookup interfaces consumed by the
// progress service.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(id)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrISBNExists   = errors.New("book with this ISBN already exists")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook adds a new book to the catalog. The ISBN must be unique.
func (r *Repository) CreateBook(book *entities.Book) error {
	var existing entities.Book
	err := r.db.Where("isbn = ?", book.ISBN).First(&existing).Error
	if err == nil {
		return ErrISBNExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if book.Status == "" {
		book.Status = entities.BookStatusActive
	}
	return r.db.Create(book).Error
}

// GetBookByID retrieves a single book.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks returns the full catalog, newest first.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("created_at DESC").Find(&books).Error
	return books, err
}

// UpdateBook overwrites the editable fields of an existing book.
func (r *Repository) UpdateBook(book *entities.Book) error {
	var existing entities.Book
	err := r.db.First(&existing, book.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookNotFound
	}
	if err != nil {
		return err
	}

	// Reject ISBN collisions with other books
	var conflict entities.Book
	err = r.db.Where("isbn = ? AND id <> ?", book.ISBN, book.ID).First(&conflict).Error
	if err == nil {
		return ErrISBNExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Model(&existing).Updates(map[string]any{
		"title":       book.Title,
		"author":      book.Author,
		"isbn":        book.ISBN,
		"category":    book.Category,
		"description": book.Description,
		"status":      book.Status,
	}).Error
}

// SetBookStatus flips a book between active and inactive. Inactive books are
// hidden from the reading-progress listing but keep their progress rows.
func (r *Repository) SetBookStatus(id uint, status entities.BookStatus) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// BookExists reports whether a book with the given ID is in the catalog.
func (r *Repository) BookExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetBookStatus returns the status of a book without loading the full row.
func (r *Repository) GetBookStatus(id uint) (entities.BookStatus, error) {
	var book entities.Book
	err := r.db.Select("status").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrBookNotFound
	}
	if err != nil {
		return "", err
	}
	return book.Status, nil
}
