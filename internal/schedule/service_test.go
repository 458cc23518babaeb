package schedule_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
)

// spyRefresher records refresh calls and optionally fails.
type spyRefresher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *spyRefresher) RefreshBlocked(_ context.Context, resourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, resourceID)
	return r.err
}

func (r *spyRefresher) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type schedFixture struct {
	repo      *schedule.MemoryRepository
	refresher *spyRefresher
	service   schedule.Service
	res       *resource.Resource
}

func newSchedFixture(t *testing.T) *schedFixture {
	t.Helper()

	repo := schedule.NewMemoryRepository()
	resRepo := resource.NewMemoryRepository()
	refresher := &spyRefresher{}

	res := &resource.Resource{Name: "Spectrometer", Capacity: 2}
	require.NoError(t, resRepo.Create(context.Background(), res))

	resService := resource.NewService(resRepo, nil)
	service := schedule.NewService(repo, resService, refresher, zap.NewNop())

	return &schedFixture{repo: repo, refresher: refresher, service: service, res: res}
}

func TestCreateRuleValidation(t *testing.T) {
	f := newSchedFixture(t)
	ctx := context.Background()

	valid := schedule.CreateRuleRequest{
		ResourceID: f.res.ID,
		DayOfWeek:  3,
		StartHour:  9,
		EndHour:    12,
		Label:      "cleaning",
		CreatedBy:  "admin-1",
	}

	t.Run("day out of range", func(t *testing.T) {
		req := valid
		req.DayOfWeek = 8
		_, err := f.service.CreateRule(ctx, req)
		assert.ErrorIs(t, err, schedule.ErrInvalidDay)

		req.DayOfWeek = 0
		_, err = f.service.CreateRule(ctx, req)
		assert.ErrorIs(t, err, schedule.ErrInvalidDay)
	})

	t.Run("inverted hours", func(t *testing.T) {
		req := valid
		req.StartHour = 12
		req.EndHour = 9
		_, err := f.service.CreateRule(ctx, req)
		assert.ErrorIs(t, err, schedule.ErrInvalidHours)
	})

	t.Run("blank label", func(t *testing.T) {
		req := valid
		req.Label = "   "
		_, err := f.service.CreateRule(ctx, req)
		assert.ErrorIs(t, err, schedule.ErrEmptyLabel)
	})

	t.Run("unknown resource", func(t *testing.T) {
		req := valid
		req.ResourceID = "00000000-0000-0000-0000-000000000000"
		_, err := f.service.CreateRule(ctx, req)
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})

	// None of the rejected requests may have triggered a refresh.
	assert.Equal(t, 0, f.refresher.callCount())

	t.Run("valid rule", func(t *testing.T) {
		rule, err := f.service.CreateRule(ctx, valid)
		require.NoError(t, err)
		assert.NotEmpty(t, rule.ID)
		assert.Equal(t, "cleaning", rule.Label)
		assert.Equal(t, "admin-1", rule.CreatedBy)
		assert.Equal(t, 1, f.refresher.callCount())
	})
}

func TestDeleteRuleRefreshes(t *testing.T) {
	f := newSchedFixture(t)
	ctx := context.Background()

	rule, err := f.service.CreateRule(ctx, schedule.CreateRuleRequest{
		ResourceID: f.res.ID,
		DayOfWeek:  1,
		StartHour:  8,
		EndHour:    10,
		Label:      "warmup",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteRule(ctx, rule.ID))
	assert.Equal(t, 2, f.refresher.callCount())

	err = f.service.DeleteRule(ctx, rule.ID)
	assert.ErrorIs(t, err, schedule.ErrRuleNotFound)
	assert.Equal(t, 2, f.refresher.callCount())
}

func TestCreateBlackoutValidation(t *testing.T) {
	f := newSchedFixture(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	t.Run("inverted time range", func(t *testing.T) {
		_, err := f.service.CreateBlackout(ctx, schedule.CreateBlackoutRequest{
			ResourceID: f.res.ID,
			Start:      start,
			End:        start.Add(-time.Hour),
			Reason:     "backwards",
		})
		assert.ErrorIs(t, err, schedule.ErrInvalidTimeRange)
	})

	t.Run("zero-length range", func(t *testing.T) {
		_, err := f.service.CreateBlackout(ctx, schedule.CreateBlackoutRequest{
			ResourceID: f.res.ID,
			Start:      start,
			End:        start,
			Reason:     "empty",
		})
		assert.ErrorIs(t, err, schedule.ErrInvalidTimeRange)
	})

	t.Run("valid blackout", func(t *testing.T) {
		b, err := f.service.CreateBlackout(ctx, schedule.CreateBlackoutRequest{
			ResourceID: f.res.ID,
			Start:      start,
			End:        start.Add(2 * time.Hour),
			Reason:     "maintenance",
			CreatedBy:  "admin-1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, 1, f.refresher.callCount())

		require.NoError(t, f.service.DeleteBlackout(ctx, b.ID))
		assert.Equal(t, 2, f.refresher.callCount())
	})
}

func TestRefreshFailureDoesNotFailMutation(t *testing.T) {
	f := newSchedFixture(t)
	f.refresher.err = errors.New("refresh backend down")
	ctx := context.Background()

	rule, err := f.service.CreateRule(ctx, schedule.CreateRuleRequest{
		ResourceID: f.res.ID,
		DayOfWeek:  2,
		StartHour:  14,
		EndHour:    16,
		Label:      "seminar",
	})
	require.NoError(t, err)

	// The rule write sticks even though the refresh failed.
	rules, err := f.service.ListRules(ctx, f.res.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.ID, rules[0].ID)
}
