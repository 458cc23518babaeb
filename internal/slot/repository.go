package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Upsert creates the slot identified by (resource, start, end) or, if it
	// already exists, updates only its blocked state. Existing bookings on the
	// slot are never touched.
	Upsert(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id string) (*Slot, error)
	// ListByResource returns the resource's slots ordered by start time,
	// optionally limited to [from, to).
	ListByResource(ctx context.Context, resourceID string, from, to *time.Time) ([]*Slot, error)
	UpdateBlocked(ctx context.Context, id string, blocked bool, label *string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Upsert(ctx context.Context, s *Slot) error {
	const query = `
		INSERT INTO public.slots (resource_id, start_time, end_time, blocked, blocked_label)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (resource_id, start_time, end_time)
		DO UPDATE SET blocked = EXCLUDED.blocked, blocked_label = EXCLUDED.blocked_label
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		s.ResourceID, s.Start, s.End, s.Blocked, s.BlockedLabel,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Slot, error) {
	const query = `
		SELECT id, resource_id, start_time, end_time, blocked, blocked_label, created_at
		FROM public.slots
		WHERE id = $1
	`
	var s Slot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ResourceID, &s.Start, &s.End, &s.Blocked, &s.BlockedLabel, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) ListByResource(ctx context.Context, resourceID string, from, to *time.Time) ([]*Slot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "resource_id", "start_time", "end_time", "blocked", "blocked_label", "created_at").
		From("public.slots").
		Where(squirrel.Eq{"resource_id": resourceID})

	if from != nil {
		query = query.Where(squirrel.GtOrEq{"start_time": *from})
	}
	if to != nil {
		query = query.Where(squirrel.Lt{"start_time": *to})
	}
	query = query.OrderBy("start_time")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list slots query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots failed: %w", err)
	}
	defer rows.Close()

	var slots []*Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(
			&s.ID, &s.ResourceID, &s.Start, &s.End, &s.Blocked, &s.BlockedLabel, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		slots = append(slots, &s)
	}
	return slots, nil
}

func (r *pgxRepository) UpdateBlocked(ctx context.Context, id string, blocked bool, label *string) error {
	const query = `
		UPDATE public.slots
		SET blocked = $1, blocked_label = $2
		WHERE id = $3
	`
	ct, err := r.pool.Exec(ctx, query, blocked, label, id)
	if err != nil {
		return fmt.Errorf("update slot blocked failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
