package resource_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
)

type spySeeder struct {
	mu     sync.Mutex
	seeded []string
}

func (s *spySeeder) MaterializeWeek(_ context.Context, resourceID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeded = append(s.seeded, resourceID)
	return nil
}

func TestCreateResource(t *testing.T) {
	seeder := &spySeeder{}
	svc := resource.NewService(resource.NewMemoryRepository(), seeder)
	ctx := context.Background()

	t.Run("seeds the first week", func(t *testing.T) {
		res, err := svc.Create(ctx, resource.CreateRequest{Name: "  3D Printer  ", Capacity: 2})
		require.NoError(t, err)
		assert.Equal(t, "3D Printer", res.Name)
		assert.Equal(t, 2, res.Capacity)
		require.Len(t, seeder.seeded, 1)
		assert.Equal(t, res.ID, seeder.seeded[0])
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svc.Create(ctx, resource.CreateRequest{Name: "  ", Capacity: 1})
		assert.ErrorIs(t, err, resource.ErrEmptyName)
	})

	t.Run("zero capacity", func(t *testing.T) {
		_, err := svc.Create(ctx, resource.CreateRequest{Name: "Laser Cutter", Capacity: 0})
		assert.ErrorIs(t, err, resource.ErrInvalidCapacity)
	})
}

func TestUpdateResource(t *testing.T) {
	svc := resource.NewService(resource.NewMemoryRepository(), nil)
	ctx := context.Background()

	res, err := svc.Create(ctx, resource.CreateRequest{Name: "Oscilloscope", Capacity: 1})
	require.NoError(t, err)

	t.Run("partial update", func(t *testing.T) {
		capacity := 3
		got, err := svc.Update(ctx, res.ID, resource.UpdateRequest{Capacity: &capacity})
		require.NoError(t, err)
		assert.Equal(t, "Oscilloscope", got.Name)
		assert.Equal(t, 3, got.Capacity)
	})

	t.Run("capacity below one", func(t *testing.T) {
		capacity := 0
		_, err := svc.Update(ctx, res.ID, resource.UpdateRequest{Capacity: &capacity})
		assert.ErrorIs(t, err, resource.ErrInvalidCapacity)
	})

	t.Run("unknown resource", func(t *testing.T) {
		name := "Ghost"
		_, err := svc.Update(ctx, "00000000-0000-0000-0000-000000000000", resource.UpdateRequest{Name: &name})
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})
}

func TestListResources(t *testing.T) {
	svc := resource.NewService(resource.NewMemoryRepository(), nil)
	ctx := context.Background()

	names := []string{"Microscope A", "Microscope B", "Centrifuge"}
	for _, name := range names {
		_, err := svc.Create(ctx, resource.CreateRequest{Name: name, Capacity: 1})
		require.NoError(t, err)
	}

	matches, total, err := svc.List(ctx, resource.Filter{Name: "microscope", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, matches, 2)

	all, total, err := svc.List(ctx, resource.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 2)
}
