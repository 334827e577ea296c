package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/tasks"
)

// HealthResponse reports the state of the two subsystems a deployment
// depends on: the catalog database and the maintenance task queue.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
	Tasks    string `json:"tasks"`
}

type HealthController struct {
	db        *database.Database
	tasks     *tasks.Client
	version   string
	startedAt time.Time
}

func NewHealthController(db *database.Database, taskClient *tasks.Client, version string) *HealthController {
	return &HealthController{
		db:        db,
		tasks:     taskClient,
		version:   version,
		startedAt: time.Now(),
	}
}

func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	}

	resp.Database = h.checkDatabase()
	if resp.Database != "ok" {
		resp.Status = "unhealthy"
	}

	// The queue is optional; a disabled queue is not a failure.
	switch {
	case h.tasks == nil:
		resp.Tasks = "disabled"
	case h.tasks.Running():
		resp.Tasks = "running"
	default:
		resp.Tasks = "stopped"
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *HealthController) checkDatabase() string {
	if h.db == nil {
		return "not configured"
	}
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
