package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreateRule(ctx context.Context, rule *RecurringRule) error
	GetRule(ctx context.Context, id string) (*RecurringRule, error)
	ListRules(ctx context.Context, resourceID string) ([]*RecurringRule, error)
	DeleteRule(ctx context.Context, id string) error

	CreateBlackout(ctx context.Context, b *Blackout) error
	GetBlackout(ctx context.Context, id string) (*Blackout, error)
	ListBlackouts(ctx context.Context, resourceID string) ([]*Blackout, error)
	DeleteBlackout(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) CreateRule(ctx context.Context, rule *RecurringRule) error {
	const query = `
		INSERT INTO public.recurring_rules (resource_id, day_of_week, start_hour, end_hour, label, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		rule.ResourceID, rule.DayOfWeek, rule.StartHour, rule.EndHour, rule.Label, rule.CreatedBy,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("create recurring rule failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetRule(ctx context.Context, id string) (*RecurringRule, error) {
	const query = `
		SELECT id, resource_id, day_of_week, start_hour, end_hour, label, created_by, created_at
		FROM public.recurring_rules
		WHERE id = $1
	`
	var rule RecurringRule
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rule.ID, &rule.ResourceID, &rule.DayOfWeek, &rule.StartHour,
		&rule.EndHour, &rule.Label, &rule.CreatedBy, &rule.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get recurring rule failed: %w", err)
	}
	return &rule, nil
}

func (r *pgxRepository) ListRules(ctx context.Context, resourceID string) ([]*RecurringRule, error) {
	const query = `
		SELECT id, resource_id, day_of_week, start_hour, end_hour, label, created_by, created_at
		FROM public.recurring_rules
		WHERE resource_id = $1
		ORDER BY day_of_week, start_hour
	`
	rows, err := r.pool.Query(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list recurring rules failed: %w", err)
	}
	defer rows.Close()

	var rules []*RecurringRule
	for rows.Next() {
		var rule RecurringRule
		if err := rows.Scan(
			&rule.ID, &rule.ResourceID, &rule.DayOfWeek, &rule.StartHour,
			&rule.EndHour, &rule.Label, &rule.CreatedBy, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recurring rule failed: %w", err)
		}
		rules = append(rules, &rule)
	}
	return rules, nil
}

func (r *pgxRepository) DeleteRule(ctx context.Context, id string) error {
	const query = `DELETE FROM public.recurring_rules WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete recurring rule failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *pgxRepository) CreateBlackout(ctx context.Context, b *Blackout) error {
	const query = `
		INSERT INTO public.blackout_dates (resource_id, start_time, end_time, reason, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		b.ResourceID, b.Start, b.End, b.Reason, b.CreatedBy,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("create blackout failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetBlackout(ctx context.Context, id string) (*Blackout, error) {
	const query = `
		SELECT id, resource_id, start_time, end_time, reason, created_by, created_at
		FROM public.blackout_dates
		WHERE id = $1
	`
	var b Blackout
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.ResourceID, &b.Start, &b.End, &b.Reason, &b.CreatedBy, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlackoutNotFound
		}
		return nil, fmt.Errorf("get blackout failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) ListBlackouts(ctx context.Context, resourceID string) ([]*Blackout, error) {
	const query = `
		SELECT id, resource_id, start_time, end_time, reason, created_by, created_at
		FROM public.blackout_dates
		WHERE resource_id = $1
		ORDER BY start_time
	`
	rows, err := r.pool.Query(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list blackouts failed: %w", err)
	}
	defer rows.Close()

	var blackouts []*Blackout
	for rows.Next() {
		var b Blackout
		if err := rows.Scan(
			&b.ID, &b.ResourceID, &b.Start, &b.End, &b.Reason, &b.CreatedBy, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan blackout failed: %w", err)
		}
		blackouts = append(blackouts, &b)
	}
	return blackouts, nil
}

func (r *pgxRepository) DeleteBlackout(ctx context.Context, id string) error {
	const query = `DELETE FROM public.blackout_dates WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete blackout failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrBlackoutNotFound
	}
	return nil
}
