package slot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midweek",
			in:   time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday maps to itself",
			in:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the week before",
			in:   time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slot.WeekStart(tt.in))
		})
	}
}

type matFixture struct {
	slots     *slot.MemoryRepository
	schedules *schedule.MemoryRepository
	resources *resource.MemoryRepository
	mat       *slot.Materializer
	res       *resource.Resource
}

func newMatFixture(t *testing.T) *matFixture {
	t.Helper()

	slots := slot.NewMemoryRepository()
	schedules := schedule.NewMemoryRepository()
	resources := resource.NewMemoryRepository()

	res := &resource.Resource{Name: "Lab Bench 1", Capacity: 1}
	require.NoError(t, resources.Create(context.Background(), res))

	mat := slot.NewMaterializer(slots, schedules, resources, slot.Hours{
		OpenHour:          8,
		CloseHour:         20,
		SlotLengthMinutes: 60,
	}, zap.NewNop())

	return &matFixture{slots: slots, schedules: schedules, resources: resources, mat: mat, res: res}
}

// ref is a Wednesday; its week starts Monday 2026-03-02.
var ref = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func TestMaterializeWeekGeneratesFullWeek(t *testing.T) {
	f := newMatFixture(t)
	ctx := context.Background()

	require.NoError(t, f.mat.MaterializeWeek(ctx, f.res.ID, ref))

	slots, err := f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, slots, 7*12) // 12 one-hour slots per day, 7 days

	first := slots[0]
	assert.Equal(t, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), first.End)

	last := slots[len(slots)-1]
	assert.Equal(t, time.Date(2026, 3, 8, 19, 0, 0, 0, time.UTC), last.Start)
	assert.Equal(t, time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC), last.End)

	for _, s := range slots {
		assert.False(t, s.Blocked)
		assert.Nil(t, s.BlockedLabel)
	}
}

func TestMaterializeWeekIsIdempotent(t *testing.T) {
	f := newMatFixture(t)
	ctx := context.Background()

	require.NoError(t, f.mat.MaterializeWeek(ctx, f.res.ID, ref))
	before, err := f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)

	// A second run over the same week must not duplicate or replace slots.
	require.NoError(t, f.mat.MaterializeWeek(ctx, f.res.ID, ref))
	after, err := f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)

	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}
}

func TestMaterializeWeekUnknownResource(t *testing.T) {
	f := newMatFixture(t)
	err := f.mat.MaterializeWeek(context.Background(), "00000000-0000-0000-0000-000000000000", ref)
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestRecurringRuleBlocksMatchingSlots(t *testing.T) {
	f := newMatFixture(t)
	ctx := context.Background()

	// Tuesdays 09:00-11:00.
	require.NoError(t, f.schedules.CreateRule(ctx, &schedule.RecurringRule{
		ResourceID: f.res.ID,
		DayOfWeek:  2,
		StartHour:  9,
		EndHour:    11,
		Label:      "weekly calibration",
	}))

	require.NoError(t, f.mat.MaterializeWeek(ctx, f.res.ID, ref))

	slots, err := f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)

	blockedStarts := map[time.Time]bool{}
	for _, s := range slots {
		if s.Blocked {
			require.NotNil(t, s.BlockedLabel)
			assert.Equal(t, "weekly calibration", *s.BlockedLabel)
			blockedStarts[s.Start] = true
		}
	}

	assert.Len(t, blockedStarts, 2)
	assert.True(t, blockedStarts[time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)])
	assert.True(t, blockedStarts[time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)])
}

func TestBlackoutBlocksContainedSlots(t *testing.T) {
	f := newMatFixture(t)
	ctx := context.Background()

	// Wednesday 10:00-12:00.
	require.NoError(t, f.schedules.CreateBlackout(ctx, &schedule.Blackout{
		ResourceID: f.res.ID,
		Start:      time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
		Reason:     "filter replacement",
	}))

	require.NoError(t, f.mat.MaterializeWeek(ctx, f.res.ID, ref))

	slots, err := f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)

	var blocked []time.Time
	for _, s := range slots {
		if s.Blocked {
			require.NotNil(t, s.BlockedLabel)
			assert.Equal(t, "filter replacement", *s.BlockedLabel)
			blocked = append(blocked, s.Start)
		}
	}

	// Only slots fully inside the window are blocked; 09:00-10:00 and
	// 12:00-13:00 touch the boundary without being contained.
	require.Len(t, blocked, 2)
	assert.Equal(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), blocked[0])
	assert.Equal(t, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC), blocked[1])
}

func TestPartialBlackoutDoesNotBlock(t *testing.T) {
	f := newMatFixture(t)
	ctx := context.Background()

	// Covers only half of the 10:00-11:00 slot.
	require.NoError(t, f.schedules.CreateBlackout(ctx, &schedule.Blackout{
		ResourceID: f.res.ID,
		Start:      time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 4, 11, 30, 0, 0, time.UTC),
		Reason:     "half window",
	}))

	require.NoError(t, f.mat.MaterializeWeek(ctx, f.res.ID, ref))

	slots, err := f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)
	for _, s := range slots {
		assert.False(t, s.Blocked, "slot at %s should not be blocked by a partial blackout", s.Start)
	}
}

func TestRefreshBlockedTracksRuleChanges(t *testing.T) {
	f := newMatFixture(t)
	ctx := context.Background()

	rule := &schedule.RecurringRule{
		ResourceID: f.res.ID,
		DayOfWeek:  5, // Friday
		StartHour:  8,
		EndHour:    20,
		Label:      "closed fridays",
	}
	require.NoError(t, f.schedules.CreateRule(ctx, rule))
	require.NoError(t, f.mat.MaterializeWeek(ctx, f.res.ID, ref))

	slots, err := f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)
	blockedCount := 0
	for _, s := range slots {
		if s.Blocked {
			blockedCount++
		}
	}
	require.Equal(t, 12, blockedCount)

	// Removing the rule and refreshing unblocks the slots in place.
	require.NoError(t, f.schedules.DeleteRule(ctx, rule.ID))
	require.NoError(t, f.mat.RefreshBlocked(ctx, f.res.ID))

	slots, err = f.slots.ListByResource(ctx, f.res.ID, nil, nil)
	require.NoError(t, err)
	for _, s := range slots {
		assert.False(t, s.Blocked)
		assert.Nil(t, s.BlockedLabel)
	}
}
