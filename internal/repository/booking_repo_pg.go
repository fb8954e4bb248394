package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qurum/pitchbooking/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.Booking, error)
	Cancel(ctx context.Context, id string) (*domain.Booking, error)
	Delete(ctx context.Context, id string) error
	BookedSlots(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, dayStart, monthStart time.Time) (*domain.Stats, error)
	Customers(ctx context.Context) ([]domain.Customer, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, name, phone, team_name, slots, total_price, paid_amount, payment_method, status, created_at, updated_at`

// Create inserts the booking and one booking_slots row per slot in a single
// transaction. The primary key on booking_slots.slot_id is the final
// authority on overlaps: a concurrent create for any shared slot loses the
// insert and surfaces as SlotConflictError.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	taken, err := slotsTaken(ctx, tx, booking.Slots)
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return &domain.SlotConflictError{Slots: taken}
	}

	booking.Status = domain.BookingStatusActive
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, name, phone, team_name, slots, total_price, paid_amount, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.Name, booking.Phone, booking.TeamName, booking.Slots,
		booking.TotalPrice, booking.PaidAmount, booking.PaymentMethod, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for _, slot := range booking.Slots {
		if _, err := tx.Exec(ctx, `INSERT INTO booking_slots (slot_id, booking_id) VALUES ($1, $2)`, slot, booking.ID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return &domain.SlotConflictError{Slots: []string{slot}}
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

func slotsTaken(ctx context.Context, tx pgx.Tx, slots []string) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT slot_id FROM booking_slots WHERE slot_id = ANY($1) ORDER BY slot_id`, slots)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		taken = append(taken, s)
	}
	return taken, rows.Err()
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

func (r *PGBookingRepository) ListByPhone(ctx context.Context, phone string) ([]domain.Booking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE phone=$1 ORDER BY created_at DESC`, phone)
}

func (r *PGBookingRepository) queryBookings(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Cancel flips the booking to CANCELLED and frees its slots in the same
// transaction, so the booking stays visible in history while its hours
// become bookable again immediately.
func (r *PGBookingRepository) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM booking_slots WHERE booking_id=$1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) BookedSlots(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT slot_id FROM booking_slots ORDER BY slot_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// Stats aggregates revenue for the given day/month starts. Cancelled
// bookings are excluded from the revenue sums but still count towards the
// booking total.
func (r *PGBookingRepository) Stats(ctx context.Context, dayStart, monthStart time.Time) (*domain.Stats, error) {
	var s domain.Stats
	err := r.db.QueryRow(ctx, `SELECT
			COALESCE(SUM(total_price) FILTER (WHERE created_at >= $1 AND status <> $3), 0),
			COALESCE(SUM(total_price) FILTER (WHERE created_at >= $2 AND status <> $3), 0),
			COUNT(*)
		FROM bookings`, dayStart, monthStart, domain.BookingStatusCancelled).
		Scan(&s.TodayRevenue, &s.MonthlyRevenue, &s.TotalBookings)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGBookingRepository) Customers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT phone,
			(array_agg(name ORDER BY created_at DESC))[1],
			COUNT(*)
		FROM bookings
		GROUP BY phone
		ORDER BY COUNT(*) DESC, phone`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.Phone, &c.Name, &c.Visits); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Name, &b.Phone, &b.TeamName, &b.Slots, &b.TotalPrice,
		&b.PaidAmount, &b.PaymentMethod, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
