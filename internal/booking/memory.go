package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
)

// MemoryRepository is an in-memory Repository with per-slot lock striping.
// The stripe lock held for the whole InSlotTx body gives every book/cancel
// the same atomic read-modify-write scope the pgx implementation gets from
// its transaction plus advisory lock. The engine performs all validation
// before its first write and in-memory writes cannot fail, so no rollback
// machinery is needed to keep the invariants.
type MemoryRepository struct {
	slots     slot.Repository
	resources resource.Repository

	mu   sync.RWMutex
	byID map[string]*Booking

	lockMu    sync.Mutex
	slotLocks map[string]*sync.Mutex
}

func NewMemoryRepository(slots slot.Repository, resources resource.Repository) *MemoryRepository {
	return &MemoryRepository{
		slots:     slots,
		resources: resources,
		byID:      make(map[string]*Booking),
		slotLocks: make(map[string]*sync.Mutex),
	}
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneBooking(b)
	return cp, nil
}

func (r *MemoryRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Booking
	for _, b := range r.byID {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.SlotID != "" && b.SlotID != filter.SlotID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		all = append(all, cloneBooking(b))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryRepository) SlotStatus(ctx context.Context, slotID string) (*SlotStatus, error) {
	s, err := r.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	st := &SlotStatus{SlotID: s.ID, Blocked: s.Blocked}
	for _, b := range r.byID {
		if b.SlotID != slotID {
			continue
		}
		switch b.Status {
		case StatusConfirmed:
			st.ConfirmedCount++
		case StatusWaitlisted:
			st.WaitlistCount++
		}
	}
	return st, nil
}

func (r *MemoryRepository) Waitlist(_ context.Context, slotID string) ([]WaitlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []WaitlistEntry
	for _, b := range r.byID {
		if b.SlotID == slotID && b.Status == StatusWaitlisted {
			entries = append(entries, WaitlistEntry{UserID: b.UserID, Position: *b.WaitlistPosition})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

func (r *MemoryRepository) InSlotTx(_ context.Context, slotID string, fn func(tx Tx) error) error {
	lock := r.slotLock(slotID)
	lock.Lock()
	defer lock.Unlock()
	return fn(&memTx{repo: r})
}

func (r *MemoryRepository) slotLock(slotID string) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	lock, ok := r.slotLocks[slotID]
	if !ok {
		lock = &sync.Mutex{}
		r.slotLocks[slotID] = lock
	}
	return lock
}

func cloneBooking(b *Booking) *Booking {
	cp := *b
	if b.WaitlistPosition != nil {
		pos := *b.WaitlistPosition
		cp.WaitlistPosition = &pos
	}
	return &cp
}

type memTx struct {
	repo *MemoryRepository
}

func (t *memTx) Slot(ctx context.Context, slotID string) (*slot.Slot, error) {
	return t.repo.slots.GetByID(ctx, slotID)
}

func (t *memTx) ResourceCapacity(ctx context.Context, resourceID string) (int, error) {
	res, err := t.repo.resources.GetByID(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	return res.Capacity, nil
}

func (t *memTx) Get(ctx context.Context, bookingID string) (*Booking, error) {
	return t.repo.GetByID(ctx, bookingID)
}

func (t *memTx) ActiveExists(_ context.Context, userID, slotID string) (bool, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	for _, b := range t.repo.byID {
		if b.UserID == userID && b.SlotID == slotID && b.Status != StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ConfirmedOverlapExists(ctx context.Context, userID, resourceID string, start, end time.Time) (bool, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	for _, b := range t.repo.byID {
		if b.UserID != userID || b.Status != StatusConfirmed {
			continue
		}
		s, err := t.repo.slots.GetByID(ctx, b.SlotID)
		if err != nil {
			continue
		}
		if s.ResourceID == resourceID && s.Start.Before(end) && s.End.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CountConfirmed(_ context.Context, slotID string) (int, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	n := 0
	for _, b := range t.repo.byID {
		if b.SlotID == slotID && b.Status == StatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (t *memTx) MaxWaitlistPosition(_ context.Context, slotID string) (int, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	max := 0
	for _, b := range t.repo.byID {
		if b.SlotID == slotID && b.Status == StatusWaitlisted && *b.WaitlistPosition > max {
			max = *b.WaitlistPosition
		}
	}
	return max, nil
}

func (t *memTx) Insert(_ context.Context, b *Booking) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, existing := range t.repo.byID {
		if existing.UserID == b.UserID && existing.SlotID == b.SlotID && existing.Status != StatusCancelled {
			return ErrAlreadyBooked
		}
	}
	b.ID = uuid.NewString()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	t.repo.byID[b.ID] = cloneBooking(b)
	return nil
}

func (t *memTx) UpdateStatus(_ context.Context, bookingID string, status Status, position *int) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	b, ok := t.repo.byID[bookingID]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	if position != nil {
		pos := *position
		b.WaitlistPosition = &pos
	} else {
		b.WaitlistPosition = nil
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) FirstWaitlisted(_ context.Context, slotID string) (*Booking, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	var head *Booking
	for _, b := range t.repo.byID {
		if b.SlotID != slotID || b.Status != StatusWaitlisted {
			continue
		}
		if head == nil || *b.WaitlistPosition < *head.WaitlistPosition {
			head = b
		}
	}
	if head == nil {
		return nil, nil
	}
	return cloneBooking(head), nil
}

func (t *memTx) ShiftWaitlist(_ context.Context, slotID string, abovePosition int) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, b := range t.repo.byID {
		if b.SlotID == slotID && b.Status == StatusWaitlisted && *b.WaitlistPosition > abovePosition {
			pos := *b.WaitlistPosition - 1
			b.WaitlistPosition = &pos
			b.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}
