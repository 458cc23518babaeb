package slot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type slotKey struct {
	resourceID string
	start      time.Time
	end        time.Time
}

// MemoryRepository is an in-memory Repository used by tests and DB-less
// deployments.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*Slot
	byKey map[slotKey]string // (resource, start, end) -> id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]*Slot),
		byKey: make(map[slotKey]string),
	}
}

func (r *MemoryRepository) Upsert(_ context.Context, s *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey{resourceID: s.ResourceID, start: s.Start, end: s.End}
	if id, ok := r.byKey[key]; ok {
		existing := r.byID[id]
		existing.Blocked = s.Blocked
		existing.BlockedLabel = s.BlockedLabel
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		return nil
	}

	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	cp := *s
	r.byID[s.ID] = &cp
	r.byKey[key] = s.ID
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepository) ListByResource(_ context.Context, resourceID string, from, to *time.Time) ([]*Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var slots []*Slot
	for _, s := range r.byID {
		if s.ResourceID != resourceID {
			continue
		}
		if from != nil && s.Start.Before(*from) {
			continue
		}
		if to != nil && !s.Start.Before(*to) {
			continue
		}
		cp := *s
		slots = append(slots, &cp)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

func (r *MemoryRepository) UpdateBlocked(_ context.Context, id string, blocked bool, label *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.Blocked = blocked
	s.BlockedLabel = label
	return nil
}
