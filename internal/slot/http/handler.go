package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
)

type Handler struct {
	repo         slot.Repository
	materializer *slot.Materializer
}

func NewHandler(repo slot.Repository, materializer *slot.Materializer) *Handler {
	return &Handler{
		repo:         repo,
		materializer: materializer,
	}
}

// ListByResource returns a resource's slots, optionally limited to [from, to).
func (h *Handler) ListByResource(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	var req ListSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	slots, err := h.repo.ListByResource(c.Request.Context(), uri.ID, req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = NewSlotResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Materialize generates (or refreshes) the slots of one week for a resource.
func (h *Handler) Materialize(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	var req MaterializeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ref := time.Now().UTC()
	if req.WeekOf != nil {
		ref = *req.WeekOf
	}

	if err := h.materializer.MaterializeWeek(c.Request.Context(), uri.ID, ref); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"week_start": slot.WeekStart(ref)})
}
