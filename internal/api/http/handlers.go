package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
	"github.com/GriffinCanCode/tgwa-bridge/internal/domain/session"
)

// Report is the operator view of a running bridge.
type Report struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	Session     session.Snapshot `json:"session"`
	ClientReady bool             `json:"client_ready"`
	LastEvent   *chat.Event      `json:"last_event,omitempty"`
	Listening   bool             `json:"listening"`
	// Breaker is the remote store circuit state, when the store has one.
	Breaker string `json:"breaker,omitempty"`
}

// Reporter supplies the current report.
type Reporter interface {
	Report() Report
}

// Handlers contains the status server handlers.
type Handlers struct {
	reporter Reporter
}

// NewHandlers creates a new handler set.
func NewHandlers(reporter Reporter) *Handlers {
	return &Handlers{reporter: reporter}
}

// Root identifies the service.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "tgwa-bridge",
		"status":  "online",
	})
}

// Health is a liveness probe: the process is up.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready is a readiness probe: posts can be forwarded.
func (h *Handlers) Ready(c *gin.Context) {
	r := h.reporter.Report()
	if !r.ClientReady {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "waiting",
			"session": r.Session.State,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Status returns the full report.
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporter.Report())
}
