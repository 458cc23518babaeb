package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "booking not found")
	ErrSlotBlocked     = apperror.New(http.StatusConflict, apperror.CodeSlotBlocked, "slot is blocked")
	ErrPastSlot        = apperror.New(http.StatusBadRequest, apperror.CodePastSlot, "slot has already started")
	ErrAlreadyBooked   = apperror.New(http.StatusConflict, apperror.CodeAlreadyBooked, "user already holds a booking for this slot")
	ErrOverlapConflict = apperror.New(http.StatusConflict, apperror.CodeOverlapConflict, "user holds an overlapping confirmed booking on this resource")
	ErrCapacityFull    = apperror.New(http.StatusConflict, apperror.CodeCapacityFull, "slot is at capacity")
	ErrNotAllowed      = apperror.New(http.StatusForbidden, apperror.CodeNotAllowed, "not allowed to cancel this booking")
	ErrGracePeriod     = apperror.New(http.StatusConflict, apperror.CodeGracePeriod, "too close to slot start to cancel")
	ErrInvalidInput    = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "invalid input parameters")
)

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusWaitlisted Status = "waitlisted"
	StatusCancelled  Status = "cancelled"
)

// Booking is a user's claim on a slot. WaitlistPosition is set if and only if
// the status is waitlisted; positions for a slot are a dense, gap-free,
// 1-based ordering matching queue order. Cancelled rows are retained for
// audit and never reactivated.
type Booking struct {
	ID               string
	UserID           string
	SlotID           string
	Status           Status
	WaitlistPosition *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID   string
	SlotID   string
	Status   string
	Page     int
	PageSize int
}

// SlotStatus is the aggregate booking state of one slot.
type SlotStatus struct {
	SlotID         string
	ConfirmedCount int
	WaitlistCount  int
	Blocked        bool
}

// WaitlistEntry is one position in a slot's ordered waitlist.
type WaitlistEntry struct {
	UserID   string
	Position int
}
