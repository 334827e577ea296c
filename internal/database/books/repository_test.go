package books

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, cleanup
}

func sampleBook(isbn string) *entities.Book {
	return &entities.Book{
		Title:    "The Go Programming Language",
		Author:   "Donovan & Kernighan",
		ISBN:     isbn,
		Category: "Programming",
	}
}

func TestRepository_CreateBook(t *testing.T) {
	t.Run("creates book with active default status", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		book := sampleBook("9780134190440")
		require.NoError(t, repo.CreateBook(book))

		assert.NotZero(t, book.ID)
		assert.Equal(t, entities.BookStatusActive, book.Status)
	})

	t.Run("rejects duplicate ISBN", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		require.NoError(t, repo.CreateBook(sampleBook("9780134190440")))

		err := repo.CreateBook(sampleBook("9780134190440"))
		assert.ErrorIs(t, err, ErrISBNExists)
	})
}

func TestRepository_GetBookByID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	book := sampleBook("9780134190440")
	require.NoError(t, repo.CreateBook(book))

	found, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, found.Title)

	_, err = repo.GetBookByID(9999)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_GetAllBooks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	books, err := repo.GetAllBooks()
	require.NoError(t, err)
	assert.Empty(t, books)

	require.NoError(t, repo.CreateBook(sampleBook("isbn-a")))
	require.NoError(t, repo.CreateBook(sampleBook("isbn-b")))

	books, err = repo.GetAllBooks()
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestRepository_UpdateBook(t *testing.T) {
	t.Run("updates editable fields", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		book := sampleBook("isbn-a")
		require.NoError(t, repo.CreateBook(book))

		book.Title = "Updated Title"
		book.Category = "Reference"
		book.Status = entities.BookStatusInactive
		require.NoError(t, repo.UpdateBook(book))

		found, err := repo.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", found.Title)
		assert.Equal(t, "Reference", found.Category)
		assert.Equal(t, entities.BookStatusInactive, found.Status)
	})

	t.Run("rejects ISBN collision with another book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		first := sampleBook("isbn-a")
		second := sampleBook("isbn-b")
		require.NoError(t, repo.CreateBook(first))
		require.NoError(t, repo.CreateBook(second))

		second.ISBN = "isbn-a"
		err := repo.UpdateBook(second)
		assert.ErrorIs(t, err, ErrISBNExists)
	})

	t.Run("keeping own ISBN is not a collision", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		book := sampleBook("isbn-a")
		require.NoError(t, repo.CreateBook(book))

		book.Title = "Same ISBN, new title"
		assert.NoError(t, repo.UpdateBook(book))
	})

	t.Run("unknown book reports not found", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		missing := sampleBook("isbn-x")
		missing.ID = 9999
		err := repo.UpdateBook(missing)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestRepository_SetBookStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	book := sampleBook("isbn-a")
	require.NoError(t, repo.CreateBook(book))

	require.NoError(t, repo.SetBookStatus(book.ID, entities.BookStatusInactive))

	status, err := repo.GetBookStatus(book.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusInactive, status)

	err = repo.SetBookStatus(9999, entities.BookStatusInactive)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_BookExists(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	book := sampleBook("isbn-a")
	require.NoError(t, repo.CreateBook(book))

	exists, err := repo.BookExists(book.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.BookExists(9999)
	require.NoError(t, err)
	assert.False(t, exists)
}
