package resource

import (
	"context"
	"strings"
	"time"
)

// WeekSeeder materializes the bookable slots of a resource for the week
// containing ref. Implemented by the slot materializer; injected so that a
// freshly created resource immediately has a bookable week.
type WeekSeeder interface {
	MaterializeWeek(ctx context.Context, resourceID string, ref time.Time) error
}

type CreateRequest struct {
	Name     string
	Capacity int
}

type UpdateRequest struct {
	Name     *string
	Capacity *int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	seeder WeekSeeder
}

// NewService creates a new resource Service. seeder may be nil, in which case
// new resources start without materialized slots.
func NewService(repo Repository, seeder WeekSeeder) Service {
	return &service{
		repo:   repo,
		seeder: seeder,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	res := &Resource{
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	// Populate the resource's first week of slots. Seeding failures do not
	// undo the creation; the week can be materialized again on demand.
	if s.seeder != nil {
		_ = s.seeder.MaterializeWeek(ctx, res.ID, time.Now().UTC())
	}

	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		res.Name = strings.TrimSpace(*req.Name)
	}
	if req.Capacity != nil {
		// Capacity changes apply to future admission decisions only; existing
		// bookings are never retroactively altered.
		if *req.Capacity < 1 {
			return nil, ErrInvalidCapacity
		}
		res.Capacity = *req.Capacity
	}

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
