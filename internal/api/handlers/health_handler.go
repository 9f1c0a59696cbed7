package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gocomet/rider-roster/internal/api/dto"
	"github.com/gocomet/rider-roster/internal/persistence"
)

// Health handles GET /health and GET /api/health. It is informational and
// always answers 200, even while the store is unavailable.
func (h *Handlers) Health(c *gin.Context) {
	state := h.Store.State()
	status := "ok"
	if state != persistence.StatePrimary && state != persistence.StateFallback {
		status = "degraded"
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: status,
		Mode:   state.String(),
		Store:  h.Store.StoreName(),
		Env:    h.Env,
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	})
}
