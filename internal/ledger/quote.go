// Package ledger holds the booking rules that do not touch storage: quoting
// with price snapshots, the status state machine, capacity arithmetic and
// booking code generation. The usecase layer wires these to repositories.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
	"tour-marketplace/internal/pricing"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Quote is the priced, validated form of a booking request. Its maps are
// independent copies of the tour's prices at quote time.
type Quote struct {
	TicketsDetail  map[string]int
	TicketsPrices  entity.PriceMap
	SelectedExtras map[string]bool
	ExtrasPrices   entity.PriceMap
	TotalPeople    int

	SubtotalTickets  decimal.Decimal
	SubtotalExtras   decimal.Decimal
	TotalAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
	OperatorAmount   decimal.Decimal
	CommissionRate   decimal.Decimal
}

// QuoteBooking validates a request against the tour and prices it. It has no
// side effects; capacity is only read.
func QuoteBooking(tour *entity.TourPackage, tickets map[string]int, extras map[string]bool, travelDate, today time.Time) (*Quote, error) {
	if !tour.IsBookable() {
		return nil, domain.New(domain.KindTourUnavailable, "tour is not available for booking", "tour_id")
	}

	totalPeople, err := countPeople(tickets, tour.AvailableSlots())
	if err != nil {
		return nil, err
	}

	ticketsDetail, ticketsPrices, err := snapshotTickets(tour, tickets)
	if err != nil {
		return nil, err
	}

	selected, extrasPrices, err := snapshotExtras(tour, extras)
	if err != nil {
		return nil, err
	}

	if err := CheckTravelDate(tour, travelDate, today); err != nil {
		return nil, err
	}

	q := &Quote{
		TicketsDetail:  ticketsDetail,
		TicketsPrices:  ticketsPrices,
		SelectedExtras: selected,
		ExtrasPrices:   extrasPrices,
		TotalPeople:    totalPeople,
		CommissionRate: tour.CommissionRate,
	}
	q.calculateTotals()
	return q, nil
}

// CheckTravelDate enforces travel_date >= today and the tour's availability
// window.
func CheckTravelDate(tour *entity.TourPackage, travelDate, today time.Time) error {
	travelDate, today = domain.Day(travelDate), domain.Day(today)
	if travelDate.Before(today) {
		return domain.New(domain.KindDateOutOfRange, "travel date cannot be in the past", "travel_date")
	}

	w := pricing.WindowOf(tour)
	if w.Contains(travelDate) {
		return nil
	}

	switch w.Type {
	case entity.AvailabilitySpecificDate:
		if w.DepartureDate != nil {
			return domain.New(domain.KindDateOutOfRange,
				fmt.Sprintf("tour only departs on %s", w.DepartureDate.Format(domain.DateLayout)), "travel_date")
		}
	case entity.AvailabilityOpenDates:
		if w.AvailableFrom != nil && w.AvailableUntil != nil {
			return domain.New(domain.KindDateOutOfRange,
				fmt.Sprintf("travel date must be between %s and %s",
					w.AvailableFrom.Format(domain.DateLayout), w.AvailableUntil.Format(domain.DateLayout)), "travel_date")
		}
	}
	return domain.New(domain.KindDateOutOfRange, "tour has no bookable dates", "travel_date")
}

// calculateTotals derives every amount from the snapshot. Extras are charged
// per person. The commission is recovered from the commission-inclusive
// total so operator + commission always equals what the traveler pays.
func (q *Quote) calculateTotals() {
	q.SubtotalTickets = decimal.Zero
	for ticketType, count := range q.TicketsDetail {
		q.SubtotalTickets = q.SubtotalTickets.Add(q.TicketsPrices[ticketType].Mul(decimal.NewFromInt(int64(count))))
	}

	q.SubtotalExtras = decimal.Zero
	people := decimal.NewFromInt(int64(q.TotalPeople))
	for key, selected := range q.SelectedExtras {
		if selected {
			q.SubtotalExtras = q.SubtotalExtras.Add(q.ExtrasPrices[key].Mul(people))
		}
	}

	q.SubtotalTickets = pricing.Round2(q.SubtotalTickets)
	q.SubtotalExtras = pricing.Round2(q.SubtotalExtras)
	q.TotalAmount = q.SubtotalTickets.Add(q.SubtotalExtras)
	q.CommissionAmount, q.OperatorAmount = SplitCommission(q.TotalAmount, q.CommissionRate)
}

// SplitCommission divides a commission-inclusive total into the platform's
// and the operator's share, exact to the cent.
func SplitCommission(total, rate decimal.Decimal) (commission, operator decimal.Decimal) {
	net := total.Div(one.Add(rate))
	commission = pricing.Round2(total.Sub(net))
	operator = total.Sub(commission)
	return commission, operator
}

// countPeople sums the ticket counts, refusing as soon as the running total
// would pass available so the sum can never overflow.
func countPeople(tickets map[string]int, available int) (int, error) {
	available = max(available, 0)
	var negative []string
	for _, ticketType := range sortedKeys(tickets) {
		if tickets[ticketType] < 0 {
			negative = append(negative, "tickets_detail."+ticketType)
		}
	}
	if len(negative) > 0 {
		return 0, domain.New(domain.KindEmptyBooking, "ticket counts cannot be negative", negative...)
	}

	total := 0
	for _, ticketType := range sortedKeys(tickets) {
		n := tickets[ticketType]
		if n > available-total {
			return 0, domain.New(domain.KindCapacityExceeded,
				fmt.Sprintf("only %d slots available", available), "tickets_detail."+ticketType)
		}
		total += n
	}
	if total < 1 {
		return 0, domain.New(domain.KindEmptyBooking, "select at least one ticket", "tickets_detail")
	}
	return total, nil
}

func snapshotTickets(tour *entity.TourPackage, tickets map[string]int) (map[string]int, entity.PriceMap, error) {
	detail := make(map[string]int, len(tickets))
	prices := make(entity.PriceMap, len(tickets))

	if len(tour.PriceVariationsWithCommission) == 0 {
		var invalid []string
		total := 0
		for _, ticketType := range sortedKeys(tickets) {
			if ticketType != entity.DefaultTicketType {
				invalid = append(invalid, ticketType)
			}
			total += tickets[ticketType]
		}
		if len(invalid) > 0 {
			return nil, nil, domain.New(domain.KindInvalidTicketType,
				fmt.Sprintf("tour only sells %q tickets", entity.DefaultTicketType), prefix("tickets_detail.", invalid)...)
		}
		detail[entity.DefaultTicketType] = total
		prices[entity.DefaultTicketType] = tour.FinalPrice
		return detail, prices, nil
	}

	var invalid []string
	for _, ticketType := range sortedKeys(tickets) {
		price, ok := tour.PriceVariationsWithCommission[ticketType]
		if !ok {
			invalid = append(invalid, ticketType)
			continue
		}
		// zero-count types are kept so the snapshot mirrors the request
		detail[ticketType] = tickets[ticketType]
		prices[ticketType] = price
	}
	if len(invalid) > 0 {
		return nil, nil, domain.New(domain.KindInvalidTicketType, "unknown ticket type", prefix("tickets_detail.", invalid)...)
	}
	return detail, prices, nil
}

func snapshotExtras(tour *entity.TourPackage, extras map[string]bool) (map[string]bool, entity.PriceMap, error) {
	if len(extras) == 0 {
		return nil, nil, nil
	}

	selected := make(map[string]bool, len(extras))
	prices := entity.PriceMap{}
	var invalid []string
	for _, key := range sortedKeys(extras) {
		price, ok := tour.ExtraServicesWithCommission[key]
		if !ok {
			invalid = append(invalid, key)
			continue
		}
		selected[key] = extras[key]
		if extras[key] {
			prices[key] = price
		}
	}
	if len(invalid) > 0 {
		return nil, nil, domain.New(domain.KindInvalidTicketType, "unknown extra service", prefix("selected_extras.", invalid)...)
	}
	if len(prices) == 0 {
		prices = nil
	}
	return selected, prices, nil
}

func prefix(p string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = p + k
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
