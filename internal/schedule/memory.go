package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and DB-less
// deployments.
type MemoryRepository struct {
	mu        sync.RWMutex
	rules     map[string]*RecurringRule
	blackouts map[string]*Blackout
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rules:     make(map[string]*RecurringRule),
		blackouts: make(map[string]*Blackout),
	}
}

func (r *MemoryRepository) CreateRule(_ context.Context, rule *RecurringRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule.ID = uuid.NewString()
	rule.CreatedAt = time.Now().UTC()
	cp := *rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetRule(_ context.Context, id string) (*RecurringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	cp := *rule
	return &cp, nil
}

func (r *MemoryRepository) ListRules(_ context.Context, resourceID string) ([]*RecurringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rules []*RecurringRule
	for _, rule := range r.rules {
		if rule.ResourceID == resourceID {
			cp := *rule
			rules = append(rules, &cp)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].DayOfWeek != rules[j].DayOfWeek {
			return rules[i].DayOfWeek < rules[j].DayOfWeek
		}
		return rules[i].StartHour < rules[j].StartHour
	})
	return rules, nil
}

func (r *MemoryRepository) DeleteRule(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[id]; !ok {
		return ErrRuleNotFound
	}
	delete(r.rules, id)
	return nil
}

func (r *MemoryRepository) CreateBlackout(_ context.Context, b *Blackout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	cp := *b
	r.blackouts[b.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetBlackout(_ context.Context, id string) (*Blackout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blackouts[id]
	if !ok {
		return nil, ErrBlackoutNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) ListBlackouts(_ context.Context, resourceID string) ([]*Blackout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var blackouts []*Blackout
	for _, b := range r.blackouts {
		if b.ResourceID == resourceID {
			cp := *b
			blackouts = append(blackouts, &cp)
		}
	}
	sort.Slice(blackouts, func(i, j int) bool { return blackouts[i].Start.Before(blackouts[j].Start) })
	return blackouts, nil
}

func (r *MemoryRepository) DeleteBlackout(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blackouts[id]; !ok {
		return ErrBlackoutNotFound
	}
	delete(r.blackouts, id)
	return nil
}
