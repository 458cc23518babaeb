package schedule

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
)

// Refresher recomputes the blocked state of a resource's materialized slots.
// Implemented by the slot materializer; called after every rule or blackout
// mutation so blocking decisions reach booking eligibility immediately.
type Refresher interface {
	RefreshBlocked(ctx context.Context, resourceID string) error
}

type CreateRuleRequest struct {
	ResourceID string
	DayOfWeek  int
	StartHour  int
	EndHour    int
	Label      string
	CreatedBy  string
}

type CreateBlackoutRequest struct {
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
	CreatedBy  string
}

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*RecurringRule, error)
	ListRules(ctx context.Context, resourceID string) ([]*RecurringRule, error)
	DeleteRule(ctx context.Context, id string) error

	CreateBlackout(ctx context.Context, req CreateBlackoutRequest) (*Blackout, error)
	ListBlackouts(ctx context.Context, resourceID string) ([]*Blackout, error)
	DeleteBlackout(ctx context.Context, id string) error
}

type service struct {
	repo       Repository
	resService resource.Service
	refresher  Refresher
	log        *zap.Logger
}

// NewService creates a new schedule Service. refresher may be nil (tests);
// rule changes then only take effect on the next materialization.
func NewService(repo Repository, resService resource.Service, refresher Refresher, log *zap.Logger) Service {
	return &service{
		repo:       repo,
		resService: resService,
		refresher:  refresher,
		log:        log,
	}
}

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*RecurringRule, error) {
	if req.DayOfWeek < 1 || req.DayOfWeek > 7 {
		return nil, ErrInvalidDay
	}
	if req.StartHour < 0 || req.EndHour > 24 || req.StartHour >= req.EndHour {
		return nil, ErrInvalidHours
	}
	if strings.TrimSpace(req.Label) == "" {
		return nil, ErrEmptyLabel
	}

	if _, err := s.resService.GetByID(ctx, req.ResourceID); err != nil {
		return nil, err
	}

	rule := &RecurringRule{
		ResourceID: req.ResourceID,
		DayOfWeek:  req.DayOfWeek,
		StartHour:  req.StartHour,
		EndHour:    req.EndHour,
		Label:      strings.TrimSpace(req.Label),
		CreatedBy:  req.CreatedBy,
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.refresh(ctx, rule.ResourceID)
	return rule, nil
}

func (s *service) ListRules(ctx context.Context, resourceID string) ([]*RecurringRule, error) {
	return s.repo.ListRules(ctx, resourceID)
}

func (s *service) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, rule.ResourceID)
	return nil
}

func (s *service) CreateBlackout(ctx context.Context, req CreateBlackoutRequest) (*Blackout, error) {
	if !req.Start.Before(req.End) {
		return nil, ErrInvalidTimeRange
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrEmptyLabel
	}

	if _, err := s.resService.GetByID(ctx, req.ResourceID); err != nil {
		return nil, err
	}

	b := &Blackout{
		ResourceID: req.ResourceID,
		Start:      req.Start.UTC(),
		End:        req.End.UTC(),
		Reason:     strings.TrimSpace(req.Reason),
		CreatedBy:  req.CreatedBy,
	}
	if err := s.repo.CreateBlackout(ctx, b); err != nil {
		return nil, err
	}

	s.refresh(ctx, b.ResourceID)
	return b, nil
}

func (s *service) ListBlackouts(ctx context.Context, resourceID string) ([]*Blackout, error) {
	return s.repo.ListBlackouts(ctx, resourceID)
}

func (s *service) DeleteBlackout(ctx context.Context, id string) error {
	b, err := s.repo.GetBlackout(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBlackout(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, b.ResourceID)
	return nil
}

// refresh pushes the rule change into slot blocked-state. A refresh failure is
// logged, not returned: the rule/blackout write already committed and the next
// materialization converges to the same state.
func (s *service) refresh(ctx context.Context, resourceID string) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.RefreshBlocked(ctx, resourceID); err != nil && s.log != nil {
		s.log.Warn("failed to refresh blocked slots",
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
	}
}
