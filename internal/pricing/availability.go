package pricing

import (
	"regexp"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
)

var departureTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Window is the availability section of a tour. Only the fields that belong
// to Type survive validation.
type Window struct {
	Type           entity.AvailabilityType
	AvailableFrom  *time.Time
	AvailableUntil *time.Time
	DepartureDate  *time.Time
	DepartureTime  *string
}

// WindowOf reads the availability fields of a tour.
func WindowOf(t *entity.TourPackage) Window {
	return Window{
		Type:           t.AvailabilityType,
		AvailableFrom:  t.AvailableFrom,
		AvailableUntil: t.AvailableUntil,
		DepartureDate:  t.DepartureDate,
		DepartureTime:  t.DepartureTime,
	}
}

// Apply writes the window back onto the tour.
func (w Window) Apply(t *entity.TourPackage) {
	t.AvailabilityType = w.Type
	t.AvailableFrom = w.AvailableFrom
	t.AvailableUntil = w.AvailableUntil
	t.DepartureDate = w.DepartureDate
	t.DepartureTime = w.DepartureTime
}

// ValidateAvailabilityWindow checks w against today and returns a copy with
// the fields of the other availability type cleared.
func ValidateAvailabilityWindow(w Window, today time.Time) (Window, error) {
	today = domain.Day(today)

	switch w.Type {
	case entity.AvailabilityOpenDates:
		var missing []string
		if w.AvailableFrom == nil {
			missing = append(missing, "available_from")
		}
		if w.AvailableUntil == nil {
			missing = append(missing, "available_until")
		}
		if len(missing) > 0 {
			return Window{}, domain.New(domain.KindInvalidAvailability, "open dates need a complete range", missing...)
		}

		from, until := domain.Day(*w.AvailableFrom), domain.Day(*w.AvailableUntil)
		var past []string
		if from.Before(today) {
			past = append(past, "available_from")
		}
		if until.Before(today) {
			past = append(past, "available_until")
		}
		if len(past) > 0 {
			return Window{}, domain.New(domain.KindInvalidAvailability, "dates cannot be in the past", past...)
		}
		if !from.Before(until) {
			return Window{}, domain.New(domain.KindInvalidAvailability, "available_until must be after available_from", "available_until")
		}

		return Window{Type: w.Type, AvailableFrom: &from, AvailableUntil: &until}, nil

	case entity.AvailabilitySpecificDate:
		if w.DepartureDate == nil {
			return Window{}, domain.New(domain.KindInvalidAvailability, "specific date needs a departure date", "departure_date")
		}
		dep := domain.Day(*w.DepartureDate)
		if dep.Before(today) {
			return Window{}, domain.New(domain.KindInvalidAvailability, "departure date cannot be in the past", "departure_date")
		}
		if w.DepartureTime != nil && !departureTimePattern.MatchString(*w.DepartureTime) {
			return Window{}, domain.New(domain.KindInvalidAvailability, "departure time must be HH:MM", "departure_time")
		}

		return Window{Type: w.Type, DepartureDate: &dep, DepartureTime: w.DepartureTime}, nil

	default:
		return Window{}, domain.New(domain.KindInvalidAvailability, "unknown availability type", "availability_type")
	}
}

// Contains reports whether day falls inside the window: equal to the
// departure date, or within [available_from, available_until].
func (w Window) Contains(day time.Time) bool {
	day = domain.Day(day)
	switch w.Type {
	case entity.AvailabilitySpecificDate:
		return w.DepartureDate != nil && domain.Day(*w.DepartureDate).Equal(day)
	case entity.AvailabilityOpenDates:
		if w.AvailableFrom == nil || w.AvailableUntil == nil {
			return false
		}
		return !day.Before(domain.Day(*w.AvailableFrom)) && !day.After(domain.Day(*w.AvailableUntil))
	}
	return false
}
