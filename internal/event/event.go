package event

import "time"

// Type identifies a domain event emitted by the booking engine.
type Type string

const (
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeWaitlisted       Type = "waitlisted"
	TypePromoted         Type = "promoted"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeSlotUpdated      Type = "slot_updated"
)

// Event is a domain event pushed toward observers. Delivery is best-effort
// fan-out; the engine does not retry or persist undelivered events.
type Event struct {
	Type     Type      `json:"type"`
	SlotID   string    `json:"slot_id"`
	UserID   string    `json:"user_id,omitempty"`
	Position int       `json:"position,omitempty"`
	At       time.Time `json:"at"`
}
