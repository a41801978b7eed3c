package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BookingFilter scopes booking listings and stats. Zero values mean "any".
type BookingFilter struct {
	TravelerID *uuid.UUID
	OperatorID *uuid.UUID
	Statuses   []entity.BookingStatus
}

type BookingRepository interface {
	// CreateWithCode inserts booking unless its code is taken. It reports
	// false without error on a code collision so the caller can retry inside
	// the same transaction.
	CreateWithCode(ctx context.Context, booking *entity.Booking) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCode(ctx context.Context, code string) (*entity.Booking, error)
	FindByCodeAndEmail(ctx context.Context, code, email string) (*entity.Booking, error)
	FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error)
	Count(ctx context.Context, filter BookingFilter) (int64, error)
	FindConfirmedBefore(ctx context.Context, day time.Time, limit int) ([]*entity.Booking, error)
	Stats(ctx context.Context, filter BookingFilter) (*entity.BookingStats, error)

	// UpdateStatus persists the status and its side fields only when the row
	// still has expected status.
	UpdateStatus(ctx context.Context, booking *entity.Booking, expected entity.BookingStatus) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	b.id, b.booking_code, b.tour_package_id, b.traveler_id, b.travel_date,
	b.tickets_detail, b.tickets_prices, b.selected_extras, b.extras_prices,
	b.subtotal_tickets::text, b.subtotal_extras::text, b.total_amount::text,
	b.commission_amount::text, b.operator_amount::text, b.commission_rate::text,
	b.contact_name, b.contact_email, b.contact_phone, b.special_requests,
	b.status, b.payment_id, b.payment_method, b.paid_at, b.cancelled_at, b.cancellation_reason,
	b.created_at, b.updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID, &b.BookingCode, &b.TourPackageID, &b.TravelerID, &b.TravelDate,
		&b.TicketsDetail, &b.TicketsPrices, &b.SelectedExtras, &b.ExtrasPrices,
		&b.SubtotalTickets, &b.SubtotalExtras, &b.TotalAmount,
		&b.CommissionAmount, &b.OperatorAmount, &b.CommissionRate,
		&b.ContactName, &b.ContactEmail, &b.ContactPhone, &b.SpecialRequests,
		&b.Status, &b.PaymentID, &b.PaymentMethod, &b.PaidAt, &b.CancelledAt, &b.CancellationReason,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) CreateWithCode(ctx context.Context, booking *entity.Booking) (bool, error) {
	query := `
		INSERT INTO bookings (
			booking_code, tour_package_id, traveler_id, travel_date,
			tickets_detail, tickets_prices, selected_extras, extras_prices,
			subtotal_tickets, subtotal_extras, total_amount, commission_amount, operator_amount, commission_rate,
			contact_name, contact_email, contact_phone, special_requests, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (booking_code) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		booking.BookingCode, booking.TourPackageID, booking.TravelerID, booking.TravelDate,
		jsonMap(booking.TicketsDetail), jsonMap(booking.TicketsPrices),
		jsonMap(booking.SelectedExtras), jsonMap(booking.ExtrasPrices),
		booking.SubtotalTickets, booking.SubtotalExtras, booking.TotalAmount,
		booking.CommissionAmount, booking.OperatorAmount, booking.CommissionRate,
		booking.ContactName, booking.ContactEmail, booking.ContactPhone, booking.SpecialRequests,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Warn("Booking code collision", zap.String("booking_code", booking.BookingCode))
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_code", booking.BookingCode),
			zap.String("tour_id", booking.TourPackageID.String()),
		)
		return false, fmt.Errorf("create booking %s: %w", booking.BookingCode, err)
	}

	return true, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, "b.id = $1", id)
}

func (r *bookingRepository) FindByCode(ctx context.Context, code string) (*entity.Booking, error) {
	return r.findOne(ctx, "b.booking_code = $1", strings.ToUpper(code))
}

func (r *bookingRepository) FindByCodeAndEmail(ctx context.Context, code, email string) (*entity.Booking, error) {
	return r.findOne(ctx, "b.booking_code = $1 AND LOWER(b.contact_email) = LOWER($2)", strings.ToUpper(code), email)
}

func (r *bookingRepository) findOne(ctx context.Context, where string, args ...any) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE ` + where

	booking, err := scanBooking(database.Conn(ctx, r.db).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err), zap.String("where", where))
		return nil, fmt.Errorf("find booking where %s: %w", where, err)
	}

	return booking, nil
}

// filterClause renders filter as a join + WHERE fragment and its arguments,
// numbered from 1.
func filterClause(filter BookingFilter) (string, []any) {
	var (
		join  string
		conds []string
		args  []any
	)

	if filter.TravelerID != nil {
		args = append(args, *filter.TravelerID)
		conds = append(conds, fmt.Sprintf("b.traveler_id = $%d", len(args)))
	}
	if filter.OperatorID != nil {
		join = " JOIN tour_packages t ON t.id = b.tour_package_id"
		args = append(args, *filter.OperatorID)
		conds = append(conds, fmt.Sprintf("t.operator_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("b.status = ANY($%d)", len(args)))
	}

	clause := "FROM bookings b" + join
	if len(conds) > 0 {
		clause += " WHERE " + strings.Join(conds, " AND ")
	}
	return clause, args
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	clause, args := filterClause(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY b.travel_date ASC, b.created_at ASC LIMIT $%d OFFSET $%d`,
		bookingColumns, clause, len(args)-1, len(args))

	return r.findMany(ctx, query, args...)
}

func (r *bookingRepository) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	clause, args := filterClause(filter)

	var count int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, "SELECT COUNT(*) "+clause, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) FindConfirmedBefore(ctx context.Context, day time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.status = 'CONFIRMED' AND b.travel_date < $1
		ORDER BY b.travel_date ASC
		LIMIT $2
	`
	return r.findMany(ctx, query, day, limit)
}

func (r *bookingRepository) findMany(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// Stats aggregates in one pass. Money figures only count CONFIRMED and
// COMPLETED bookings.
func (r *bookingRepository) Stats(ctx context.Context, filter BookingFilter) (*entity.BookingStats, error) {
	clause, args := filterClause(filter)
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE b.status = 'PENDING'),
			COUNT(*) FILTER (WHERE b.status = 'CONFIRMED'),
			COUNT(*) FILTER (WHERE b.status = 'CANCELLED'),
			COUNT(*) FILTER (WHERE b.status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE b.status = 'REFUNDED'),
			COALESCE(SUM(b.total_amount) FILTER (WHERE b.status IN ('CONFIRMED', 'COMPLETED')), 0)::text,
			COALESCE(SUM(b.operator_amount) FILTER (WHERE b.status IN ('CONFIRMED', 'COMPLETED')), 0)::text,
			COALESCE(SUM(b.commission_amount) FILTER (WHERE b.status IN ('CONFIRMED', 'COMPLETED')), 0)::text,
			ROUND(COALESCE(AVG(b.total_amount) FILTER (WHERE b.status IN ('CONFIRMED', 'COMPLETED')), 0), 2)::text,
			COALESCE(SUM((SELECT SUM(value::int) FROM jsonb_each_text(b.tickets_detail))), 0)::bigint
		` + clause

	var s entity.BookingStats
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(
		&s.TotalBookings, &s.PendingBookings, &s.ConfirmedBookings, &s.CancelledBookings,
		&s.CompletedBookings, &s.RefundedBookings,
		&s.TotalSpent, &s.TotalRevenue, &s.TotalCommission, &s.AverageBookingValue,
		&s.TotalPeople,
	)
	if err != nil {
		r.log.Error("Failed to aggregate booking stats", zap.Error(err))
		return nil, fmt.Errorf("aggregate booking stats: %w", err)
	}

	return &s, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, booking *entity.Booking, expected entity.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings SET
			status = $3, payment_id = $4, payment_method = $5, paid_at = $6,
			cancelled_at = $7, cancellation_reason = $8, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at
	`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		booking.ID, expected, booking.Status,
		booking.PaymentID, booking.PaymentMethod, booking.PaidAt,
		booking.CancelledAt, booking.CancellationReason,
	).Scan(&booking.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("to_status", string(booking.Status)),
		)
		return false, fmt.Errorf("update booking %s status: %w", booking.ID.String(), err)
	}

	return true, nil
}
