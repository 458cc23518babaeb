package resource

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "resource not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "name cannot be empty")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, apperror.CodeInvalidInput, "capacity must be a positive integer")
)

// Resource represents a bookable, capacity-limited asset (e.g., Workstation 3,
// Printer B). Capacity is the number of simultaneous confirmed bookings a slot
// of this resource may hold.
type Resource struct {
	ID        string
	Name      string
	Capacity  int
	CreatedAt time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Name     string
	Page     int
	PageSize int
}
