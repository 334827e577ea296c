package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/tasks"
)

// AdminController handles maintenance endpoints restricted to admins.
type AdminController struct {
	taskClient *tasks.Client
}

func NewAdminController(taskClient *tasks.Client) *AdminController {
	return &AdminController{taskClient: taskClient}
}

// RecountStats enqueues a background recount of every user's books-read
// counter.
// POST /api/admin/stats/recount
func (ac *AdminController) RecountStats(c *gin.Context) {
	ids, err := ac.taskClient.Add(tasks.RecountBooksReadTask{}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue recount")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":  true,
		"message":  "Recount scheduled",
		"task_ids": ids,
	})
}
