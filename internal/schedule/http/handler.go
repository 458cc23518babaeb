package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lab-booking-backend/internal/auth"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
)

type Handler struct {
	service schedule.Service
}

func NewHandler(service schedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), schedule.CreateRuleRequest{
		ResourceID: req.ResourceID,
		DayOfWeek:  req.DayOfWeek,
		StartHour:  req.StartHour,
		EndHour:    req.EndHour,
		Label:      req.Label,
		CreatedBy:  auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRuleResponse(rule))
}

func (h *Handler) ListRules(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	rules, err := h.service.ListRules(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RuleResponse, len(rules))
	for i, rule := range rules {
		items[i] = NewRuleResponse(rule)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) DeleteRule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateBlackout(c *gin.Context) {
	var req CreateBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.CreateBlackout(c.Request.Context(), schedule.CreateBlackoutRequest{
		ResourceID: req.ResourceID,
		Start:      req.Start,
		End:        req.End,
		Reason:     req.Reason,
		CreatedBy:  auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBlackoutResponse(b))
}

func (h *Handler) ListBlackouts(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	blackouts, err := h.service.ListBlackouts(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BlackoutResponse, len(blackouts))
	for i, b := range blackouts {
		items[i] = NewBlackoutResponse(b)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) DeleteBlackout(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blackout id"})
		return
	}

	if err := h.service.DeleteBlackout(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
