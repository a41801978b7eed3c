package repository

import (
	"tour-marketplace/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Tour          TourRepository
	Booking       BookingRepository
	StatusHistory StatusHistoryRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tour:          NewTourRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		StatusHistory: NewStatusHistoryRepository(db, log),
	}
}

// jsonMap keeps JSONB columns as {} instead of null for empty maps.
func jsonMap[M ~map[string]V, V any](m M) M {
	if m == nil {
		return M{}
	}
	return m
}
