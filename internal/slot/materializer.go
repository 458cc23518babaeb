package slot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
)

// Hours holds the operating-hour configuration slots are generated from.
type Hours struct {
	OpenHour          int // 0-23
	CloseHour         int // 1-24
	SlotLengthMinutes int
}

// Materializer derives bookable slots for a resource from its operating hours
// and marks them blocked per recurring rules and blackouts. It implements
// resource.WeekSeeder and schedule.Refresher.
//
// Runs for the same resource are serialized with a per-resource mutex; the
// upsert-by-unique-key makes materialization idempotent, so two runs with
// unchanged rules produce an identical slot set.
type Materializer struct {
	slots     Repository
	schedules schedule.Repository
	resources resource.Repository
	hours     Hours
	log       *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-resource serialization
}

func NewMaterializer(slots Repository, schedules schedule.Repository, resources resource.Repository, hours Hours, log *zap.Logger) *Materializer {
	return &Materializer{
		slots:     slots,
		schedules: schedules,
		resources: resources,
		hours:     hours,
		log:       log,
		locks:     make(map[string]*sync.Mutex),
	}
}

// WeekStart returns the Monday at 00:00 UTC on or before t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := isoWeekday(day) - 1
	return day.AddDate(0, 0, -offset)
}

// isoWeekday maps Go's weekday (Sunday=0) to ISO numbering (Monday=1 ... Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// MaterializeWeek generates (or refreshes) the slots of the 7-day week
// containing ref for the given resource.
func (m *Materializer) MaterializeWeek(ctx context.Context, resourceID string, ref time.Time) error {
	if _, err := m.resources.GetByID(ctx, resourceID); err != nil {
		return err
	}

	lock := m.resourceLock(resourceID)
	lock.Lock()
	defer lock.Unlock()

	rules, err := m.schedules.ListRules(ctx, resourceID)
	if err != nil {
		return err
	}
	blackouts, err := m.schedules.ListBlackouts(ctx, resourceID)
	if err != nil {
		return err
	}

	weekStart := WeekStart(ref)
	slotLen := time.Duration(m.hours.SlotLengthMinutes) * time.Minute
	perDay := (m.hours.CloseHour - m.hours.OpenHour) * 60 / m.hours.SlotLengthMinutes

	for day := 0; day < 7; day++ {
		dayStart := weekStart.AddDate(0, 0, day)
		open := dayStart.Add(time.Duration(m.hours.OpenHour) * time.Hour)

		for i := 0; i < perDay; i++ {
			s := &Slot{
				ResourceID: resourceID,
				Start:      open.Add(time.Duration(i) * slotLen),
				End:        open.Add(time.Duration(i+1) * slotLen),
			}
			s.Blocked, s.BlockedLabel = blockedState(s.Start, s.End, rules, blackouts)

			if err := m.slots.Upsert(ctx, s); err != nil {
				return fmt.Errorf("materialize week for resource %s: %w", resourceID, err)
			}
		}
	}

	m.log.Debug("materialized week",
		zap.String("resource_id", resourceID),
		zap.Time("week_start", weekStart),
		zap.Int("slots_per_day", perDay),
	)
	return nil
}

// RefreshBlocked recomputes blocked state for every existing slot of the
// resource from the current rules and blackouts. Bookings are untouched.
func (m *Materializer) RefreshBlocked(ctx context.Context, resourceID string) error {
	lock := m.resourceLock(resourceID)
	lock.Lock()
	defer lock.Unlock()

	rules, err := m.schedules.ListRules(ctx, resourceID)
	if err != nil {
		return err
	}
	blackouts, err := m.schedules.ListBlackouts(ctx, resourceID)
	if err != nil {
		return err
	}

	slots, err := m.slots.ListByResource(ctx, resourceID, nil, nil)
	if err != nil {
		return err
	}

	for _, s := range slots {
		blocked, label := blockedState(s.Start, s.End, rules, blackouts)
		if blocked == s.Blocked && equalLabel(label, s.BlockedLabel) {
			continue
		}
		if err := m.slots.UpdateBlocked(ctx, s.ID, blocked, label); err != nil {
			return fmt.Errorf("refresh blocked for resource %s: %w", resourceID, err)
		}
	}
	return nil
}

// blockedState reports whether the [start, end) window is blocked and by what.
// A recurring rule blocks a slot that lies fully inside the rule's hour window
// on the matching ISO weekday; a blackout blocks a slot that lies fully inside
// its absolute window. Rule labels win over blackout reasons.
func blockedState(start, end time.Time, rules []*schedule.RecurringRule, blackouts []*schedule.Blackout) (bool, *string) {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	startMin := int(start.Sub(dayStart) / time.Minute)
	endMin := int(end.Sub(dayStart) / time.Minute)
	day := isoWeekday(start)

	for _, r := range rules {
		if r.DayOfWeek == day && startMin >= r.StartHour*60 && endMin <= r.EndHour*60 {
			label := r.Label
			return true, &label
		}
	}
	for _, b := range blackouts {
		if !start.Before(b.Start) && !end.After(b.End) {
			reason := b.Reason
			return true, &reason
		}
	}
	return false, nil
}

func equalLabel(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (m *Materializer) resourceLock(resourceID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[resourceID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[resourceID] = lock
	}
	return lock
}
