package repository

import (
	"context"
	"errors"
	"fmt"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TourRepository interface {
	Create(ctx context.Context, tour *entity.TourPackage) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TourPackage, error)
	FindPublished(ctx context.Context, limit, offset int) ([]*entity.TourPackage, error)
	CountPublished(ctx context.Context) (int64, error)
	Update(ctx context.Context, tour *entity.TourPackage) (bool, error)

	// IncrementBookings and DecrementBookings are the only writers of
	// current_bookings. ok is false when the guard rejected the change or the
	// tour does not exist; nothing is written in that case.
	IncrementBookings(ctx context.Context, id uuid.UUID, count int) (current int, ok bool, err error)
	DecrementBookings(ctx context.Context, id uuid.UUID, count int) (current int, ok bool, err error)
}

type tourRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTourRepository(db database.PgxIface, log *zap.Logger) TourRepository {
	return &tourRepository{
		db:  db,
		log: log.With(zap.String("repository", "tour")),
	}
}

const tourColumns = `
	id, operator_id, title, description, location, destination, meeting_point, duration_days,
	base_price::text, commission_rate::text, final_price::text,
	price_variations, price_variations_with_commission, extra_services, extra_services_with_commission,
	availability_type, available_from, available_until, departure_date, departure_time,
	group_size, current_bookings, status, is_active, created_at, updated_at, deleted_at`

func scanTour(row pgx.Row) (*entity.TourPackage, error) {
	var t entity.TourPackage
	err := row.Scan(
		&t.ID, &t.OperatorID, &t.Title, &t.Description, &t.Location, &t.Destination, &t.MeetingPoint, &t.DurationDays,
		&t.BasePrice, &t.CommissionRate, &t.FinalPrice,
		&t.PriceVariations, &t.PriceVariationsWithCommission, &t.ExtraServices, &t.ExtraServicesWithCommission,
		&t.AvailabilityType, &t.AvailableFrom, &t.AvailableUntil, &t.DepartureDate, &t.DepartureTime,
		&t.GroupSize, &t.CurrentBookings, &t.Status, &t.IsActive, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tourRepository) Create(ctx context.Context, tour *entity.TourPackage) error {
	query := `
		INSERT INTO tour_packages (
			operator_id, title, description, location, destination, meeting_point, duration_days,
			base_price, commission_rate, final_price,
			price_variations, price_variations_with_commission, extra_services, extra_services_with_commission,
			availability_type, available_from, available_until, departure_date, departure_time,
			group_size, current_bookings, status, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, 0, $21, $22)
		RETURNING id, current_bookings, created_at, updated_at
	`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		tour.OperatorID, tour.Title, tour.Description, tour.Location, tour.Destination, tour.MeetingPoint, tour.DurationDays,
		tour.BasePrice, tour.CommissionRate, tour.FinalPrice,
		jsonMap(tour.PriceVariations), jsonMap(tour.PriceVariationsWithCommission),
		jsonMap(tour.ExtraServices), jsonMap(tour.ExtraServicesWithCommission),
		tour.AvailabilityType, tour.AvailableFrom, tour.AvailableUntil, tour.DepartureDate, tour.DepartureTime,
		tour.GroupSize, tour.Status, tour.IsActive,
	).Scan(&tour.ID, &tour.CurrentBookings, &tour.CreatedAt, &tour.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create tour",
			zap.Error(err),
			zap.String("operator_id", tour.OperatorID.String()),
			zap.String("title", tour.Title),
		)
		return fmt.Errorf("create tour %s: %w", tour.Title, err)
	}

	return nil
}

func (r *tourRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TourPackage, error) {
	query := `SELECT ` + tourColumns + ` FROM tour_packages WHERE id = $1 AND deleted_at IS NULL`

	tour, err := scanTour(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tour by ID", zap.Error(err), zap.String("tour_id", id.String()))
		return nil, fmt.Errorf("find tour by ID %s: %w", id.String(), err)
	}

	return tour, nil
}

func (r *tourRepository) FindPublished(ctx context.Context, limit, offset int) ([]*entity.TourPackage, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tour_packages
		WHERE status = 'PUBLISHED' AND is_active AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list published tours", zap.Error(err))
		return nil, fmt.Errorf("list published tours: %w", err)
	}
	defer rows.Close()

	var tours []*entity.TourPackage
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tour: %w", err)
		}
		tours = append(tours, tour)
	}

	return tours, rows.Err()
}

func (r *tourRepository) CountPublished(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM tour_packages WHERE status = 'PUBLISHED' AND is_active AND deleted_at IS NULL`

	var count int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count published tours", zap.Error(err))
		return 0, fmt.Errorf("count published tours: %w", err)
	}

	return count, nil
}

// Update writes authored and derived fields. current_bookings is left alone
// and the write is refused when group_size would drop below it.
func (r *tourRepository) Update(ctx context.Context, tour *entity.TourPackage) (bool, error) {
	query := `
		UPDATE tour_packages SET
			title = $2, description = $3, location = $4, destination = $5, meeting_point = $6, duration_days = $7,
			base_price = $8, commission_rate = $9, final_price = $10,
			price_variations = $11, price_variations_with_commission = $12,
			extra_services = $13, extra_services_with_commission = $14,
			availability_type = $15, available_from = $16, available_until = $17,
			departure_date = $18, departure_time = $19,
			group_size = $20, status = $21, is_active = $22, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND current_bookings <= $20
		RETURNING current_bookings, updated_at
	`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		tour.ID, tour.Title, tour.Description, tour.Location, tour.Destination, tour.MeetingPoint, tour.DurationDays,
		tour.BasePrice, tour.CommissionRate, tour.FinalPrice,
		jsonMap(tour.PriceVariations), jsonMap(tour.PriceVariationsWithCommission),
		jsonMap(tour.ExtraServices), jsonMap(tour.ExtraServicesWithCommission),
		tour.AvailabilityType, tour.AvailableFrom, tour.AvailableUntil, tour.DepartureDate, tour.DepartureTime,
		tour.GroupSize, tour.Status, tour.IsActive,
	).Scan(&tour.CurrentBookings, &tour.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to update tour", zap.Error(err), zap.String("tour_id", tour.ID.String()))
		return false, fmt.Errorf("update tour %s: %w", tour.ID.String(), err)
	}

	return true, nil
}

func (r *tourRepository) IncrementBookings(ctx context.Context, id uuid.UUID, count int) (int, bool, error) {
	query := `
		UPDATE tour_packages
		SET current_bookings = current_bookings + $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND current_bookings + $2 <= group_size
		RETURNING current_bookings
	`
	return r.adjust(ctx, "increment", query, id, count)
}

func (r *tourRepository) DecrementBookings(ctx context.Context, id uuid.UUID, count int) (int, bool, error) {
	query := `
		UPDATE tour_packages
		SET current_bookings = current_bookings - $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND current_bookings - $2 >= 0
		RETURNING current_bookings
	`
	return r.adjust(ctx, "decrement", query, id, count)
}

func (r *tourRepository) adjust(ctx context.Context, op, query string, id uuid.UUID, count int) (int, bool, error) {
	var current int
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id, count).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		r.log.Error("Failed to adjust tour capacity",
			zap.Error(err),
			zap.String("op", op),
			zap.String("tour_id", id.String()),
			zap.Int("count", count),
		)
		return 0, false, fmt.Errorf("%s bookings for tour %s: %w", op, id.String(), err)
	}

	return current, true, nil
}
