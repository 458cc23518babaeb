package http

import (
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/booking"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/request"
)

// CreateBookingRequest is the payload for booking a slot. When no_waitlist is
// true the request hard-fails with CAPACITY_FULL instead of queueing.
type CreateBookingRequest struct {
	SlotID     string `json:"slot_id" binding:"required,uuid"`
	NoWaitlist bool   `json:"no_waitlist"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	SlotID string `form:"slot_id" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=confirmed waitlisted cancelled"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

type BookingResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	SlotID           string    `json:"slot_id"`
	Status           string    `json:"status"`
	WaitlistPosition *int      `json:"waitlist_position,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		SlotID:           b.SlotID,
		Status:           string(b.Status),
		WaitlistPosition: b.WaitlistPosition,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

type CancelResponse struct {
	Booking        BookingResponse `json:"booking"`
	PromotedUserID string          `json:"promoted_user_id,omitempty"`
}

type SlotStatusResponse struct {
	SlotID         string `json:"slot_id"`
	ConfirmedCount int    `json:"confirmed_count"`
	WaitlistCount  int    `json:"waitlist_count"`
	Blocked        bool   `json:"blocked"`
}

type WaitlistEntryResponse struct {
	UserID   string `json:"user_id"`
	Position int    `json:"position"`
}
