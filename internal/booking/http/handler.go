package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lab-booking-backend/internal/auth"
	"github.com/nekogravitycat/lab-booking-backend/internal/booking"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/lab-booking-backend/internal/user"
)

type Handler struct {
	service     booking.Service
	userService user.Service
}

func NewHandler(service booking.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

// actor builds the engine-facing actor from the authenticated user. The
// engine receives capabilities, not roles.
func (h *Handler) actor(c *gin.Context) (booking.Actor, bool) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return booking.Actor{}, false
	}

	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return booking.Actor{}, false
	}

	return booking.Actor{
		UserID:          u.ID,
		CanCancelOthers: user.CanCancelOthers(u.Role),
	}, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	b, err := h.service.Book(c.Request.Context(), booking.BookRequest{
		UserID:     actor.UserID,
		SlotID:     req.SlotID,
		NoWaitlist: req.NoWaitlist,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	// Members only see their own bookings; staff/admin may filter by user.
	filterUserID := actor.UserID
	if actor.CanCancelOthers {
		filterUserID = req.UserID
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		UserID:   filterUserID,
		SlotID:   req.SlotID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if b.UserID != actor.UserID && !actor.CanCancelOthers {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), uri.ID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CancelResponse{
		Booking:        NewBookingResponse(result.Booking),
		PromotedUserID: result.PromotedUserID,
	})
}

func (h *Handler) SlotStatus(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	st, err := h.service.SlotStatus(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SlotStatusResponse{
		SlotID:         st.SlotID,
		ConfirmedCount: st.ConfirmedCount,
		WaitlistCount:  st.WaitlistCount,
		Blocked:        st.Blocked,
	})
}

func (h *Handler) SlotWaitlist(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	entries, err := h.service.SlotWaitlist(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]WaitlistEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = WaitlistEntryResponse{UserID: e.UserID, Position: e.Position}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
