package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
	"github.com/nekogravitycat/lab-booking-backend/internal/slot"
)

// Tx is the transactional view the engine operates on inside InSlotTx. All
// reads and writes through a Tx belong to one atomically-isolated unit.
type Tx interface {
	Slot(ctx context.Context, slotID string) (*slot.Slot, error)
	ResourceCapacity(ctx context.Context, resourceID string) (int, error)
	Get(ctx context.Context, bookingID string) (*Booking, error)
	// ActiveExists reports whether the user holds a non-cancelled booking for
	// the slot.
	ActiveExists(ctx context.Context, userID, slotID string) (bool, error)
	// ConfirmedOverlapExists reports whether the user holds a confirmed
	// booking on the resource whose slot intersects [start, end).
	ConfirmedOverlapExists(ctx context.Context, userID, resourceID string, start, end time.Time) (bool, error)
	CountConfirmed(ctx context.Context, slotID string) (int, error)
	MaxWaitlistPosition(ctx context.Context, slotID string) (int, error)
	Insert(ctx context.Context, b *Booking) error
	UpdateStatus(ctx context.Context, bookingID string, status Status, position *int) error
	// FirstWaitlisted returns the waitlisted booking with the smallest
	// position, or nil if the waitlist is empty.
	FirstWaitlisted(ctx context.Context, slotID string) (*Booking, error)
	// ShiftWaitlist decrements by one every waitlist position greater than
	// abovePosition, restoring a dense 1..N ordering.
	ShiftWaitlist(ctx context.Context, slotID string, abovePosition int) error
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	SlotStatus(ctx context.Context, slotID string) (*SlotStatus, error)
	Waitlist(ctx context.Context, slotID string) ([]WaitlistEntry, error)

	// InSlotTx runs fn as one atomic read-modify-write unit serialized per
	// slot. The capacity check (count, then insert) and the waitlist position
	// allocation (max, then insert) are read-then-write races without it.
	InSlotTx(ctx context.Context, slotID string, fn func(tx Tx) error) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const bookingColumns = "id, user_id, slot_id, status, waitlist_position, created_at, updated_at"

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.UserID, &b.SlotID, &b.Status, &b.WaitlistPosition, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := "SELECT " + bookingColumns + " FROM public.bookings WHERE id = $1"
	return scanBooking(r.pool.QueryRow(ctx, query, id))
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "user_id", "slot_id", "status", "waitlist_position",
		"created_at", "updated_at", "count(*) OVER() as total_count",
	).From("public.bookings")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.SlotID != "" {
		query = query.Where(squirrel.Eq{"slot_id": filter.SlotID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	query = query.OrderBy("created_at DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.SlotID, &b.Status, &b.WaitlistPosition,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, total, nil
}

func (r *pgxRepository) SlotStatus(ctx context.Context, slotID string) (*SlotStatus, error) {
	const query = `
		SELECT
			s.id,
			s.blocked,
			count(b.id) FILTER (WHERE b.status = 'confirmed'),
			count(b.id) FILTER (WHERE b.status = 'waitlisted')
		FROM public.slots s
		LEFT JOIN public.bookings b ON b.slot_id = s.id
		WHERE s.id = $1
		GROUP BY s.id, s.blocked
	`
	var st SlotStatus
	err := r.pool.QueryRow(ctx, query, slotID).
		Scan(&st.SlotID, &st.Blocked, &st.ConfirmedCount, &st.WaitlistCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, slot.ErrNotFound
		}
		return nil, fmt.Errorf("get slot status failed: %w", err)
	}
	return &st, nil
}

func (r *pgxRepository) Waitlist(ctx context.Context, slotID string) ([]WaitlistEntry, error) {
	const query = `
		SELECT user_id, waitlist_position
		FROM public.bookings
		WHERE slot_id = $1 AND status = 'waitlisted'
		ORDER BY waitlist_position
	`
	rows, err := r.pool.Query(ctx, query, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot waitlist failed: %w", err)
	}
	defer rows.Close()

	var entries []WaitlistEntry
	for rows.Next() {
		var e WaitlistEntry
		if err := rows.Scan(&e.UserID, &e.Position); err != nil {
			return nil, fmt.Errorf("scan waitlist entry failed: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *pgxRepository) InSlotTx(ctx context.Context, slotID string, fn func(tx Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize all booking activity on this slot for the duration of the
	// transaction. hashtextextended maps the UUID to the bigint key space
	// pg_advisory_xact_lock expects; the lock is released at commit/rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, slotID); err != nil {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	if err := fn(&pgxTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Slot(ctx context.Context, slotID string) (*slot.Slot, error) {
	const query = `
		SELECT id, resource_id, start_time, end_time, blocked, blocked_label, created_at
		FROM public.slots
		WHERE id = $1
	`
	var s slot.Slot
	err := t.tx.QueryRow(ctx, query, slotID).Scan(
		&s.ID, &s.ResourceID, &s.Start, &s.End, &s.Blocked, &s.BlockedLabel, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, slot.ErrNotFound
		}
		return nil, fmt.Errorf("get slot failed: %w", err)
	}
	return &s, nil
}

func (t *pgxTx) ResourceCapacity(ctx context.Context, resourceID string) (int, error) {
	const query = `SELECT capacity FROM public.resources WHERE id = $1`
	var capacity int
	if err := t.tx.QueryRow(ctx, query, resourceID).Scan(&capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, resource.ErrNotFound
		}
		return 0, fmt.Errorf("get resource capacity failed: %w", err)
	}
	return capacity, nil
}

func (t *pgxTx) Get(ctx context.Context, bookingID string) (*Booking, error) {
	query := "SELECT " + bookingColumns + " FROM public.bookings WHERE id = $1"
	return scanBooking(t.tx.QueryRow(ctx, query, bookingID))
}

func (t *pgxTx) ActiveExists(ctx context.Context, userID, slotID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM public.bookings
			WHERE user_id = $1 AND slot_id = $2 AND status <> 'cancelled'
		)
	`
	var exists bool
	if err := t.tx.QueryRow(ctx, query, userID, slotID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active booking failed: %w", err)
	}
	return exists, nil
}

func (t *pgxTx) ConfirmedOverlapExists(ctx context.Context, userID, resourceID string, start, end time.Time) (bool, error) {
	// Half-open interval overlap: existing.start < end AND existing.end > start.
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM public.bookings b
			JOIN public.slots s ON b.slot_id = s.id
			WHERE b.user_id = $1
			  AND s.resource_id = $2
			  AND b.status = 'confirmed'
			  AND s.start_time < $4
			  AND s.end_time > $3
		)
	`
	var exists bool
	if err := t.tx.QueryRow(ctx, query, userID, resourceID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (t *pgxTx) CountConfirmed(ctx context.Context, slotID string) (int, error) {
	const query = `SELECT count(*) FROM public.bookings WHERE slot_id = $1 AND status = 'confirmed'`
	var n int
	if err := t.tx.QueryRow(ctx, query, slotID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count confirmed bookings failed: %w", err)
	}
	return n, nil
}

func (t *pgxTx) MaxWaitlistPosition(ctx context.Context, slotID string) (int, error) {
	const query = `
		SELECT COALESCE(max(waitlist_position), 0)
		FROM public.bookings
		WHERE slot_id = $1 AND status = 'waitlisted'
	`
	var max int
	if err := t.tx.QueryRow(ctx, query, slotID).Scan(&max); err != nil {
		return 0, fmt.Errorf("get max waitlist position failed: %w", err)
	}
	return max, nil
}

func (t *pgxTx) Insert(ctx context.Context, b *Booking) error {
	const query = `
		INSERT INTO public.bookings (user_id, slot_id, status, waitlist_position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := t.tx.QueryRow(ctx, query, b.UserID, b.SlotID, b.Status, b.WaitlistPosition).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyBooked
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (t *pgxTx) UpdateStatus(ctx context.Context, bookingID string, status Status, position *int) error {
	const query = `
		UPDATE public.bookings
		SET status = $1, waitlist_position = $2, updated_at = now()
		WHERE id = $3
	`
	ct, err := t.tx.Exec(ctx, query, status, position, bookingID)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgxTx) FirstWaitlisted(ctx context.Context, slotID string) (*Booking, error) {
	query := "SELECT " + bookingColumns + `
		FROM public.bookings
		WHERE slot_id = $1 AND status = 'waitlisted'
		ORDER BY waitlist_position
		LIMIT 1
	`
	b, err := scanBooking(t.tx.QueryRow(ctx, query, slotID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (t *pgxTx) ShiftWaitlist(ctx context.Context, slotID string, abovePosition int) error {
	const query = `
		UPDATE public.bookings
		SET waitlist_position = waitlist_position - 1, updated_at = now()
		WHERE slot_id = $1 AND status = 'waitlisted' AND waitlist_position > $2
	`
	if _, err := t.tx.Exec(ctx, query, slotID, abovePosition); err != nil {
		return fmt.Errorf("shift waitlist failed: %w", err)
	}
	return nil
}
