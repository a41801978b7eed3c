package request

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount is a money value sent either as a JSON number or a string. It is
// kept verbatim so the pricing engine reports malformed values itself.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// AmountMap maps a ticket type or extra service key to its net price.
type AmountMap map[string]Amount

func (m AmountMap) Strings() map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = string(v)
	}
	return out
}

// TourRequest creates a tour or replaces an existing one. Derived prices are
// never accepted from the client.
type TourRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Location     string `json:"location" validate:"max=200"`
	Destination  string `json:"destination" validate:"max=200"`
	MeetingPoint string `json:"meeting_point" validate:"max=300"`
	DurationDays int    `json:"duration_days" validate:"gte=1"`

	BasePrice       Amount    `json:"base_price" validate:"required"`
	CommissionRate  *Amount   `json:"commission_rate,omitempty"`
	PriceVariations AmountMap `json:"price_variations,omitempty"`
	ExtraServices   AmountMap `json:"extra_services,omitempty"`

	AvailabilityType string  `json:"availability_type" validate:"required,oneof=OPEN_DATES SPECIFIC_DATE"`
	AvailableFrom    *string `json:"available_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AvailableUntil   *string `json:"available_until,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DepartureDate    *string `json:"departure_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DepartureTime    *string `json:"departure_time,omitempty" validate:"omitempty,datetime=15:04"`

	GroupSize int    `json:"group_size" validate:"gte=1"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PENDING PUBLISHED REJECTED"`
	IsActive  *bool  `json:"is_active,omitempty"`
}
