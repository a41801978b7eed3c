package repository

import (
	"context"
	"fmt"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusHistoryRepository is append-only.
type StatusHistoryRepository interface {
	Append(ctx context.Context, entry *entity.BookingStatusHistory) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingStatusHistory, error)
}

type statusHistoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewStatusHistoryRepository(db database.PgxIface, log *zap.Logger) StatusHistoryRepository {
	return &statusHistoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_status_history")),
	}
}

func (r *statusHistoryRepository) Append(ctx context.Context, entry *entity.BookingStatusHistory) error {
	query := `
		INSERT INTO booking_status_history (booking_id, from_status, to_status, changed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, clock_timestamp())
		RETURNING id, created_at
	`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		entry.BookingID, entry.FromStatus, entry.ToStatus, entry.ChangedBy, entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		r.log.Error("Failed to append status history",
			zap.Error(err),
			zap.String("booking_id", entry.BookingID.String()),
			zap.String("from", string(entry.FromStatus)),
			zap.String("to", string(entry.ToStatus)),
		)
		return fmt.Errorf("append status history for booking %s: %w", entry.BookingID.String(), err)
	}

	return nil
}

func (r *statusHistoryRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingStatusHistory, error) {
	query := `
		SELECT id, booking_id, from_status, to_status, changed_by, notes, created_at
		FROM booking_status_history
		WHERE booking_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to list status history", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("list status history for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var entries []*entity.BookingStatusHistory
	for rows.Next() {
		var e entity.BookingStatusHistory
		if err := rows.Scan(&e.ID, &e.BookingID, &e.FromStatus, &e.ToStatus, &e.ChangedBy, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
