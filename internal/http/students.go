package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	progressdb "github.com/openshelf/openshelf/internal/database/progress"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reading"
)

// ProgressService defines the reading operations consumed by the student
// endpoints. Implemented by reading.Service.
type ProgressService interface {
	SaveProgress(userID, bookID uint, currentChapter, totalChapters int) (*reading.SaveOutcome, error)
	ListProgress(userID uint) ([]progressdb.RecordWithBook, error)
	AddReadingTime(userID uint, minutes int) error
	Stats(userID uint) (*entities.ReadingStats, error)
}

// StudentsController handles the student-facing progress endpoints.
type StudentsController struct {
	service ProgressService
}

func NewStudentsController(service ProgressService) *StudentsController {
	return &StudentsController{service: service}
}

type saveProgressRequest struct {
	BookID         *uint `json:"book_id"`
	CurrentChapter *int  `json:"current_chapter"`
	TotalChapters  *int  `json:"total_chapters"`
}

// SaveProgress records how far the user has read into a book.
// POST /students/save_progress
func (sc *StudentsController) SaveProgress(c *gin.Context) {
	var req saveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Missing required fields")
		return
	}
	if req.BookID == nil || req.CurrentChapter == nil {
		respondBadRequest(c, "Missing required fields")
		return
	}

	totalChapters := 0
	if req.TotalChapters != nil {
		totalChapters = *req.TotalChapters
	}

	outcome, err := sc.service.SaveProgress(GetUserID(c), *req.BookID, *req.CurrentChapter, totalChapters)
	if err != nil {
		switch {
		case errors.Is(err, reading.ErrInvalidChapter), errors.Is(err, reading.ErrInvalidTotal):
			respondBadRequest(c, err.Error())
		case errors.Is(err, reading.ErrBookNotFound):
			respondNotFound(c, "Book not found")
		default:
			respondInternalError(c, err, "save progress")
		}
		return
	}

	status := http.StatusOK
	message := "Progress updated"
	if outcome.Created {
		status = http.StatusCreated
		message = "Progress saved"
	}

	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"progress": gin.H{
			"chapter":    outcome.Chapter,
			"total":      outcome.Total,
			"percentage": outcome.Percentage,
		},
	})
}

// ReadingProgress lists the user's in-progress books, most recent first.
// GET /students/reading_progress
func (sc *StudentsController) ReadingProgress(c *gin.Context) {
	records, err := sc.service.ListProgress(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "reading progress")
		return
	}

	if records == nil {
		records = []progressdb.RecordWithBook{}
	}
	c.JSON(http.StatusOK, records)
}

type updateReadingTimeRequest struct {
	Minutes *int `json:"minutes"`
}

// UpdateReadingTime adds session minutes to the user's reading-time total.
// POST /students/update_reading_time
func (sc *StudentsController) UpdateReadingTime(c *gin.Context) {
	var req updateReadingTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Minutes required")
		return
	}
	if req.Minutes == nil {
		respondBadRequest(c, "Minutes required")
		return
	}

	if err := sc.service.AddReadingTime(GetUserID(c), *req.Minutes); err != nil {
		if errors.Is(err, reading.ErrInvalidMinutes) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "update reading time")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Reading time updated",
		"minutes_added": *req.Minutes,
	})
}

// Stats returns the user's reading statistics.
// GET /students/stats
func (sc *StudentsController) Stats(c *gin.Context) {
	stats, err := sc.service.Stats(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
