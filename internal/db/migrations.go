package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS public.users (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	display_name TEXT,
	role TEXT NOT NULL DEFAULT 'member',
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_login_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS public.resources (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name TEXT NOT NULL,
	capacity INTEGER NOT NULL CHECK (capacity > 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS public.slots (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	resource_id UUID NOT NULL REFERENCES public.resources(id) ON DELETE CASCADE,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	blocked BOOLEAN NOT NULL DEFAULT false,
	blocked_label TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_time < end_time),
	UNIQUE (resource_id, start_time, end_time)
);

CREATE TABLE IF NOT EXISTS public.bookings (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id UUID NOT NULL REFERENCES public.users(id),
	slot_id UUID NOT NULL REFERENCES public.slots(id) ON DELETE CASCADE,
	status TEXT NOT NULL,
	waitlist_position INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (status IN ('confirmed', 'waitlisted', 'cancelled')),
	CHECK ((status = 'waitlisted') = (waitlist_position IS NOT NULL))
);

-- One live (non-cancelled) booking per user and slot.
CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_user_slot
	ON public.bookings(user_id, slot_id) WHERE status <> 'cancelled';

CREATE INDEX IF NOT EXISTS idx_bookings_slot_status ON public.bookings(slot_id, status);
CREATE INDEX IF NOT EXISTS idx_slots_resource_start ON public.slots(resource_id, start_time);

CREATE TABLE IF NOT EXISTS public.recurring_rules (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	resource_id UUID NOT NULL REFERENCES public.resources(id) ON DELETE CASCADE,
	day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 1 AND 7),
	start_hour INTEGER NOT NULL CHECK (start_hour BETWEEN 0 AND 23),
	end_hour INTEGER NOT NULL CHECK (end_hour BETWEEN 1 AND 24),
	label TEXT NOT NULL,
	created_by UUID NOT NULL REFERENCES public.users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_hour < end_hour)
);

CREATE TABLE IF NOT EXISTS public.blackout_dates (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	resource_id UUID NOT NULL REFERENCES public.resources(id) ON DELETE CASCADE,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	reason TEXT NOT NULL,
	created_by UUID NOT NULL REFERENCES public.users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_time < end_time)
);
`

// Migrate creates the schema if it does not exist. All statements are
// idempotent so this runs on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}
