package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TourStatus string

const (
	TourStatusDraft     TourStatus = "DRAFT"
	TourStatusPending   TourStatus = "PENDING"
	TourStatusPublished TourStatus = "PUBLISHED"
	TourStatusRejected  TourStatus = "REJECTED"
)

type AvailabilityType string

const (
	AvailabilityOpenDates    AvailabilityType = "OPEN_DATES"
	AvailabilitySpecificDate AvailabilityType = "SPECIFIC_DATE"
)

// PriceMap maps a ticket type or extra service key to an amount.
type PriceMap map[string]decimal.Decimal

// Clone returns an independent copy so snapshots never alias the tour's maps.
func (m PriceMap) Clone() PriceMap {
	if m == nil {
		return nil
	}
	out := make(PriceMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type TourPackage struct {
	Base
	OperatorID   uuid.UUID `db:"operator_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Location     string    `db:"location"`
	Destination  string    `db:"destination"`
	MeetingPoint string    `db:"meeting_point"`
	DurationDays int       `db:"duration_days"`

	// Net prices authored by the operator.
	BasePrice       decimal.Decimal `db:"base_price"`
	CommissionRate  decimal.Decimal `db:"commission_rate"`
	PriceVariations PriceMap        `db:"price_variations"`
	ExtraServices   PriceMap        `db:"extra_services"`

	// Derived by the pricing engine, never authored.
	FinalPrice                    decimal.Decimal `db:"final_price"`
	PriceVariationsWithCommission PriceMap        `db:"price_variations_with_commission"`
	ExtraServicesWithCommission   PriceMap        `db:"extra_services_with_commission"`

	AvailabilityType AvailabilityType `db:"availability_type"`
	AvailableFrom    *time.Time       `db:"available_from"`
	AvailableUntil   *time.Time       `db:"available_until"`
	DepartureDate    *time.Time       `db:"departure_date"`
	DepartureTime    *string          `db:"departure_time"` // HH:MM

	GroupSize       int `db:"group_size"`
	CurrentBookings int `db:"current_bookings"`

	Status   TourStatus `db:"status"`
	IsActive bool       `db:"is_active"`
}

func (t *TourPackage) AvailableSlots() int {
	return t.GroupSize - t.CurrentBookings
}

func (t *TourPackage) IsFull() bool {
	return t.CurrentBookings >= t.GroupSize
}

// IsBookable reports whether travelers may book the tour at all.
func (t *TourPackage) IsBookable() bool {
	return t.IsActive && t.Status == TourStatusPublished
}
