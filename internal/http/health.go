package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vocadex/vocadex/internal/database"
)

// HealthResponse reports liveness and the state of the entry store.
// The store is the only hard dependency: dictionary, translator and
// sync backends are reached lazily and degrade per request, so they
// are not probed here.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

type HealthController struct {
	db      *database.Database
	version string
	started time.Time
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
		started: timeNow(),
	}
}

// pingStore checks that the entry store still answers.
func (h *HealthController) pingStore() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Status answers GET /health. The entry store failing turns the
// response into a 503 so an orchestrator restarts the process.
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Uptime:   timeNow().Sub(h.started).Round(time.Second).String(),
		Database: "ok",
	}

	switch {
	case h.db == nil:
		resp.Database = "not configured"
	default:
		if err := h.pingStore(); err != nil {
			resp.Status = "degraded"
			resp.Database = "error: " + err.Error()
		}
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
