package resource

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and DB-less
// deployments.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*Resource
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*Resource)}
}

func (r *MemoryRepository) Create(_ context.Context, res *Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.ID = uuid.NewString()
	res.CreatedAt = time.Now().UTC()
	cp := *res
	r.byID[res.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *MemoryRepository) List(_ context.Context, filter Filter) ([]*Resource, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Resource
	for _, res := range r.byID {
		if filter.Name != "" && !strings.Contains(strings.ToLower(res.Name), strings.ToLower(filter.Name)) {
			continue
		}
		cp := *res
		all = append(all, &cp)
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

func (r *MemoryRepository) Update(_ context.Context, res *Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[res.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = res.Name
	existing.Capacity = res.Capacity
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
