package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gocomet/rider-roster/internal/api/dto"
	"github.com/gocomet/rider-roster/internal/domain/rider"
)

// ListRiders handles GET /api/riders
func (h *Handlers) ListRiders(c *gin.Context) {
	var query dto.ListRidersQuery
	// string fields cannot fail to bind
	_ = c.ShouldBindQuery(&query)

	res, err := h.Riders.List(c.Request.Context(), query.ToListQuery())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetRider handles GET /api/riders/:id
func (h *Handlers) GetRider(c *gin.Context) {
	r, err := h.Riders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRider handles POST /api/riders
func (h *Handlers) CreateRider(c *gin.Context) {
	var in rider.Input
	if err := bindJSON(c, &in); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	r, err := h.Riders.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// UpdateRider handles PUT /api/riders/:id
func (h *Handlers) UpdateRider(c *gin.Context) {
	var in rider.Input
	if err := bindJSON(c, &in); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	r, err := h.Riders.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRider handles DELETE /api/riders/:id
func (h *Handlers) DeleteRider(c *gin.Context) {
	if err := h.Riders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Rider deleted successfully"})
}
