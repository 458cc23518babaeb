package http

import (
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
)

// ListSlotsRequest defines query parameters for listing a resource's slots.
type ListSlotsRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// MaterializeRequest triggers slot materialization for the week containing
// the given date (defaults to the current week).
type MaterializeRequest struct {
	WeekOf *time.Time `json:"week_of" time_format:"2006-01-02T15:04:05Z07:00"`
}

type SlotResponse struct {
	ID           string    `json:"id"`
	ResourceID   string    `json:"resource_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Blocked      bool      `json:"blocked"`
	BlockedLabel *string   `json:"blocked_label,omitempty"`
}

func NewSlotResponse(s *slot.Slot) SlotResponse {
	return SlotResponse{
		ID:           s.ID,
		ResourceID:   s.ResourceID,
		Start:        s.Start,
		End:          s.End,
		Blocked:      s.Blocked,
		BlockedLabel: s.BlockedLabel,
	}
}
