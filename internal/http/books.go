package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
)

// BookStore defines database operations for catalog management.
// Implemented by books.Repository.
type BookStore interface {
	CreateBook(book *entities.Book) error
	GetBookByID(id uint) (*entities.Book, error)
	GetAllBooks() ([]entities.Book, error)
	UpdateBook(book *entities.Book) error
	SetBookStatus(id uint, status entities.BookStatus) error
}

// BooksController handles catalog endpoints. Reads are public; mutations
// are restricted to admins by the router.
type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

type bookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ListBooks returns the full catalog, newest first.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	allBooks, err := bc.store.GetAllBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	if allBooks == nil {
		allBooks = []entities.Book{}
	}
	c.JSON(http.StatusOK, allBooks)
}

// GetBook returns a single book.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "Book not found")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// CreateBook adds a book to the catalog.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Missing required fields")
		return
	}
	if req.Title == "" || req.Author == "" || req.ISBN == "" || req.Category == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	status := entities.BookStatus(req.Status)
	if status == "" {
		status = entities.BookStatusActive
	}

	book := &entities.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		Description: req.Description,
		Status:      status,
	}

	if err := bc.store.CreateBook(book); err != nil {
		if errors.Is(err, books.ErrISBNExists) {
			respondConflict(c, "Book with this ISBN already exists")
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Book created successfully",
		"book_id": book.ID,
	})
}

// UpdateBook overwrites a book's catalog fields.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Incomplete data")
		return
	}
	if req.Title == "" || req.Author == "" || req.ISBN == "" || req.Category == "" {
		respondBadRequest(c, "Incomplete data")
		return
	}

	status := entities.BookStatus(req.Status)
	if status == "" {
		status = entities.BookStatusActive
	}

	book := &entities.Book{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		Description: req.Description,
		Status:      status,
	}

	if err := bc.store.UpdateBook(book); err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			respondNotFound(c, "Book not found")
		case errors.Is(err, books.ErrISBNExists):
			respondConflict(c, "Book with this ISBN already exists")
		default:
			respondInternalError(c, err, "update book")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Book updated successfully"})
}

// DeactivateBook soft-deletes a book by marking it inactive. Progress rows
// referencing it are kept; the reading-progress listing filters them out.
// DELETE /api/books/:id
func (bc *BooksController) DeactivateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.SetBookStatus(id, entities.BookStatusInactive); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "Book not found")
			return
		}
		respondInternalError(c, err, "deactivate book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Book deactivated"})
}
