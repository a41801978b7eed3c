package response

import (
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
)

type TourResponse struct {
	ID           string `json:"id"`
	OperatorID   string `json:"operator_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Destination  string `json:"destination"`
	MeetingPoint string `json:"meeting_point"`
	DurationDays int    `json:"duration_days"`

	BasePrice                     string            `json:"base_price"`
	CommissionRate                string            `json:"commission_rate"`
	FinalPrice                    string            `json:"final_price"`
	PriceVariations               map[string]string `json:"price_variations"`
	PriceVariationsWithCommission map[string]string `json:"price_variations_with_commission"`
	ExtraServices                 map[string]string `json:"extra_services"`
	ExtraServicesWithCommission   map[string]string `json:"extra_services_with_commission"`

	AvailabilityType entity.AvailabilityType `json:"availability_type"`
	AvailableFrom    *string                 `json:"available_from,omitempty"`
	AvailableUntil   *string                 `json:"available_until,omitempty"`
	DepartureDate    *string                 `json:"departure_date,omitempty"`
	DepartureTime    *string                 `json:"departure_time,omitempty"`

	GroupSize       int               `json:"group_size"`
	CurrentBookings int               `json:"current_bookings"`
	AvailableSlots  int               `json:"available_slots"`
	IsFull          bool              `json:"is_full"`
	Status          entity.TourStatus `json:"status"`
	IsActive        bool              `json:"is_active"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type CapacityResponse struct {
	TourID          string `json:"tour_id"`
	GroupSize       int    `json:"group_size"`
	CurrentBookings int    `json:"current_bookings"`
	AvailableSlots  int    `json:"available_slots"`
}

func TourToResponse(t *entity.TourPackage) TourResponse {
	return TourResponse{
		ID:                            t.ID.String(),
		OperatorID:                    t.OperatorID.String(),
		Title:                         t.Title,
		Description:                   t.Description,
		Location:                      t.Location,
		Destination:                   t.Destination,
		MeetingPoint:                  t.MeetingPoint,
		DurationDays:                  t.DurationDays,
		BasePrice:                     Money(t.BasePrice),
		CommissionRate:                t.CommissionRate.StringFixed(4),
		FinalPrice:                    Money(t.FinalPrice),
		PriceVariations:               Prices(t.PriceVariations),
		PriceVariationsWithCommission: Prices(t.PriceVariationsWithCommission),
		ExtraServices:                 Prices(t.ExtraServices),
		ExtraServicesWithCommission:   Prices(t.ExtraServicesWithCommission),
		AvailabilityType:              t.AvailabilityType,
		AvailableFrom:                 day(t.AvailableFrom),
		AvailableUntil:                day(t.AvailableUntil),
		DepartureDate:                 day(t.DepartureDate),
		DepartureTime:                 t.DepartureTime,
		GroupSize:                     t.GroupSize,
		CurrentBookings:               t.CurrentBookings,
		AvailableSlots:                t.AvailableSlots(),
		IsFull:                        t.IsFull(),
		Status:                        t.Status,
		IsActive:                      t.IsActive,
		CreatedAt:                     t.CreatedAt,
		UpdatedAt:                     t.UpdatedAt,
	}
}

func CapacityToResponse(t *entity.TourPackage) CapacityResponse {
	return CapacityResponse{
		TourID:          t.ID.String(),
		GroupSize:       t.GroupSize,
		CurrentBookings: t.CurrentBookings,
		AvailableSlots:  t.AvailableSlots(),
	}
}

func day(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
