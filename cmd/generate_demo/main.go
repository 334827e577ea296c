// Command generate_demo creates a demo database with a sample catalog,
// demo accounts and reading progress.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/stats"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reading"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	booksRepo := books.NewRepository(db.DB)
	statsRepo := stats.NewRepository(db.DB)

	cfg := config.NewConfig()
	authService := auth.NewService(db.DB, statsRepo, cfg.Auth)

	catalog := createCatalog(booksRepo)

	admin, err := authService.Register("Demo Admin", "admin@openshelf.local", "admin-pass", entities.UserRoleAdmin)
	if err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}
	log.Printf("Created admin account %s", admin.Email)

	student, err := authService.Register("Demo Student", "student@openshelf.local", "student-pass", entities.UserRoleStudent)
	if err != nil {
		log.Fatalf("Failed to create student account: %v", err)
	}
	log.Printf("Created student account %s", student.Email)

	seedProgress(db, booksRepo, student.ID, catalog)

	log.Println("Demo database generated successfully!")
}

func createCatalog(repo *books.Repository) []entities.Book {
	samples := []entities.Book{
		{
			Title:    "Meditations",
			Author:   "Marcus Aurelius",
			ISBN:     "9780140449334",
			Category: "Philosophy",
			Status:   entities.BookStatusActive,
		},
		{
			Title:    "Pride and Prejudice",
			Author:   "Jane Austen",
			ISBN:     "9780141439518",
			Category: "Fiction",
			Status:   entities.BookStatusActive,
		},
		{
			Title:    "The Origin of Species",
			Author:   "Charles Darwin",
			ISBN:     "9780140436310",
			Category: "Science",
			Status:   entities.BookStatusActive,
		},
		{
			Title:    "Frankenstein",
			Author:   "Mary Shelley",
			ISBN:     "9780141439471",
			Category: "Fiction",
			Status:   entities.BookStatusActive,
		},
		{
			Title:    "Walden",
			Author:   "Henry David Thoreau",
			ISBN:     "9780140390445",
			Category: "Philosophy",
			Status:   entities.BookStatusInactive,
		},
	}

	created := make([]entities.Book, 0, len(samples))
	for i := range samples {
		if err := repo.CreateBook(&samples[i]); err != nil {
			log.Printf("Failed to save book %s: %v", samples[i].Title, err)
			continue
		}
		log.Printf("Saved: %s by %s", samples[i].Title, samples[i].Author)
		created = append(created, samples[i])
	}
	return created
}

func seedProgress(db *database.Database, booksRepo *books.Repository, studentID uint, catalog []entities.Book) {
	service := reading.NewService(db.DB, booksRepo)

	type seed struct {
		bookIdx int
		chapter int
		total   int
	}
	seeds := []seed{
		{bookIdx: 0, chapter: 3, total: 12},
		{bookIdx: 1, chapter: 7, total: 20},
		{bookIdx: 2, chapter: 12, total: 12},
	}

	for _, s := range seeds {
		if s.bookIdx >= len(catalog) {
			continue
		}
		book := catalog[s.bookIdx]
		outcome, err := service.SaveProgress(studentID, book.ID, s.chapter, s.total)
		if err != nil {
			log.Printf("Failed to seed progress for %s: %v", book.Title, err)
			continue
		}
		log.Printf("Seeded progress for %s: chapter %d/%d (%d%%)",
			book.Title, outcome.Chapter, outcome.Total, outcome.Percentage)
	}

	if err := service.AddReadingTime(studentID, 145); err != nil {
		log.Printf("Failed to seed reading time: %v", err)
	}

	// Give the completed book a plausible timestamp in the past
	if len(catalog) > 2 {
		past := time.Now().Add(-48 * time.Hour)
		db.DB.Model(&entities.ReadingProgress{}).
			Where("user_id = ? AND book_id = ?", studentID, catalog[2].ID).
			Update("last_read", past)
	}
}
