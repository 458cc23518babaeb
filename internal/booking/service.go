package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/lab-booking-backend/internal/event"
	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/clock"
)

// Actor is the precomputed identity the authorization layer hands the engine.
// The engine receives a capability, not a role string.
type Actor struct {
	UserID          string
	CanCancelOthers bool
}

// BookRequest asks for a claim on a slot. NoWaitlist makes the request
// hard-fail with ErrCapacityFull instead of joining the waitlist.
type BookRequest struct {
	UserID     string
	SlotID     string
	NoWaitlist bool
}

// CancelResult reports the cancelled booking and, when the cancellation freed
// a confirmed seat, the user promoted from the front of the waitlist.
type CancelResult struct {
	Booking        *Booking
	PromotedUserID string
}

type Service interface {
	Book(ctx context.Context, req BookRequest) (*Booking, error)
	Cancel(ctx context.Context, bookingID string, actor Actor) (*CancelResult, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	SlotStatus(ctx context.Context, slotID string) (*SlotStatus, error)
	SlotWaitlist(ctx context.Context, slotID string) ([]WaitlistEntry, error)
}

type engine struct {
	repo     Repository
	clk      clock.Clock
	grace    time.Duration
	notifier event.Notifier
	log      *zap.Logger
}

// NewService creates the booking engine. grace is the minimum lead time
// before a slot's start within which a confirmed booking may no longer be
// cancelled.
func NewService(repo Repository, clk clock.Clock, grace time.Duration, notifier event.Notifier, log *zap.Logger) Service {
	if notifier == nil {
		notifier = event.Nop{}
	}
	return &engine{
		repo:     repo,
		clk:      clk,
		grace:    grace,
		notifier: notifier,
		log:      log,
	}
}

// Book validates and executes one booking request as a single atomic unit.
// The duplicate and overlap checks run before the capacity check so a user is
// never silently waitlisted for a slot they already hold via another path,
// and never double-counted toward capacity.
func (e *engine) Book(ctx context.Context, req BookRequest) (*Booking, error) {
	if req.UserID == "" || req.SlotID == "" {
		return nil, ErrInvalidInput
	}

	var (
		b   *Booking
		evt event.Event
	)
	err := e.repo.InSlotTx(ctx, req.SlotID, func(tx Tx) error {
		s, err := tx.Slot(ctx, req.SlotID)
		if err != nil {
			return err
		}
		if s.Blocked {
			return ErrSlotBlocked
		}
		if !s.Start.After(e.clk.Now()) {
			return ErrPastSlot
		}

		exists, err := tx.ActiveExists(ctx, req.UserID, req.SlotID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyBooked
		}

		overlaps, err := tx.ConfirmedOverlapExists(ctx, req.UserID, s.ResourceID, s.Start, s.End)
		if err != nil {
			return err
		}
		if overlaps {
			return ErrOverlapConflict
		}

		capacity, err := tx.ResourceCapacity(ctx, s.ResourceID)
		if err != nil {
			return err
		}
		confirmed, err := tx.CountConfirmed(ctx, req.SlotID)
		if err != nil {
			return err
		}

		if confirmed < capacity {
			b = &Booking{UserID: req.UserID, SlotID: req.SlotID, Status: StatusConfirmed}
			if err := tx.Insert(ctx, b); err != nil {
				return err
			}
			evt = event.Event{Type: event.TypeBookingConfirmed, SlotID: req.SlotID, UserID: req.UserID}
			return nil
		}

		if req.NoWaitlist {
			return ErrCapacityFull
		}

		maxPos, err := tx.MaxWaitlistPosition(ctx, req.SlotID)
		if err != nil {
			return err
		}
		pos := maxPos + 1
		b = &Booking{UserID: req.UserID, SlotID: req.SlotID, Status: StatusWaitlisted, WaitlistPosition: &pos}
		if err := tx.Insert(ctx, b); err != nil {
			return err
		}
		evt = event.Event{Type: event.TypeWaitlisted, SlotID: req.SlotID, UserID: req.UserID, Position: pos}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, evt)
	return b, nil
}

// Cancel marks a booking cancelled and, if it held a confirmed seat, promotes
// the front of the waitlist. Booking rows are retained for audit.
func (e *engine) Cancel(ctx context.Context, bookingID string, actor Actor) (*CancelResult, error) {
	if bookingID == "" || actor.UserID == "" {
		return nil, ErrInvalidInput
	}

	// The slot is only known after reading the booking; the authoritative
	// re-read happens under the slot lock inside the transaction.
	peek, err := e.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{}
	var events []event.Event

	err = e.repo.InSlotTx(ctx, peek.SlotID, func(tx Tx) error {
		b, err := tx.Get(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == StatusCancelled {
			return ErrNotFound
		}
		if b.UserID != actor.UserID && !actor.CanCancelOthers {
			return ErrNotAllowed
		}

		s, err := tx.Slot(ctx, b.SlotID)
		if err != nil {
			return err
		}

		wasConfirmed := b.Status == StatusConfirmed
		if wasConfirmed {
			// Grace rule: a confirmed booking may not be cancelled once the
			// slot has started, nor when start - now <= grace (inclusive).
			now := e.clk.Now()
			if !now.Before(s.Start) || s.Start.Sub(now) <= e.grace {
				return ErrGracePeriod
			}
		}

		freedPosition := 0
		if b.Status == StatusWaitlisted {
			freedPosition = *b.WaitlistPosition
		}

		if err := tx.UpdateStatus(ctx, b.ID, StatusCancelled, nil); err != nil {
			return err
		}
		b.Status = StatusCancelled
		b.WaitlistPosition = nil
		result.Booking = b
		events = append(events, event.Event{Type: event.TypeBookingCancelled, SlotID: s.ID, UserID: b.UserID})

		if wasConfirmed {
			// Promotion cascade: the smallest surviving position wins, so
			// promotion order matches original queueing order even after
			// intermediate cancellations compacted the sequence.
			head, err := tx.FirstWaitlisted(ctx, s.ID)
			if err != nil {
				return err
			}
			if head != nil {
				origPos := *head.WaitlistPosition
				if err := tx.UpdateStatus(ctx, head.ID, StatusConfirmed, nil); err != nil {
					return err
				}
				if err := tx.ShiftWaitlist(ctx, s.ID, origPos); err != nil {
					return err
				}
				result.PromotedUserID = head.UserID
				events = append(events, event.Event{Type: event.TypePromoted, SlotID: s.ID, UserID: head.UserID})
			}
		} else if freedPosition > 0 {
			// A waitlisted booking left the queue; close the gap it left.
			if err := tx.ShiftWaitlist(ctx, s.ID, freedPosition); err != nil {
				return err
			}
		}

		events = append(events, event.Event{Type: event.TypeSlotUpdated, SlotID: s.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, evt := range events {
		e.emit(ctx, evt)
	}
	return result, nil
}

func (e *engine) GetByID(ctx context.Context, id string) (*Booking, error) {
	return e.repo.GetByID(ctx, id)
}

func (e *engine) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return e.repo.List(ctx, filter)
}

func (e *engine) SlotStatus(ctx context.Context, slotID string) (*SlotStatus, error) {
	return e.repo.SlotStatus(ctx, slotID)
}

func (e *engine) SlotWaitlist(ctx context.Context, slotID string) ([]WaitlistEntry, error) {
	return e.repo.Waitlist(ctx, slotID)
}

func (e *engine) emit(ctx context.Context, evt event.Event) {
	if evt.Type == "" {
		return
	}
	evt.At = e.clk.Now()
	e.notifier.Publish(ctx, evt)
}
