package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/data/repository"
	"tour-marketplace/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// store is an in-memory stand-in for Postgres. Capacity changes are atomic
// under mu, and WithinTransaction undoes every write of a failed callback.
type store struct {
	mu       sync.Mutex
	tours    map[uuid.UUID]*entity.TourPackage
	bookings map[uuid.UUID]*entity.Booking
	codes    map[string]uuid.UUID
	history  []*entity.BookingStatusHistory

	historyErr error
}

func newStore() *store {
	return &store{
		tours:    make(map[uuid.UUID]*entity.TourPackage),
		bookings: make(map[uuid.UUID]*entity.Booking),
		codes:    make(map[string]uuid.UUID),
	}
}

func (s *store) repository() *repository.Repository {
	return &repository.Repository{
		Tour:          tourRepo{s},
		Booking:       bookingRepo{s},
		StatusHistory: historyRepo{s},
	}
}

type journalKey struct{}

type journal struct {
	mu   sync.Mutex
	undo []func()
}

// record must be called with s.mu held; undo funcs take the lock themselves.
func (s *store) record(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.mu.Lock()
		j.undo = append(j.undo, undo)
		j.mu.Unlock()
	}
}

func (s *store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		return err
	}
	return nil
}

func (s *store) tour(id uuid.UUID) *entity.TourPackage {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *s.tours[id]
	return &t
}

func (s *store) booking(id uuid.UUID) *entity.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := *s.bookings[id]
	return &b
}

func (s *store) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *store) historyFor(id uuid.UUID) []*entity.BookingStatusHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.BookingStatusHistory
	for _, h := range s.history {
		if h.BookingID == id {
			out = append(out, h)
		}
	}
	return out
}

// putBooking stores b as is, bypassing the service.
func (s *store) putBooking(b *entity.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	c := *b
	s.bookings[b.ID] = &c
	s.codes[b.BookingCode] = b.ID
}

// ---- tours ----

type tourRepo struct{ s *store }

func (r tourRepo) Create(_ context.Context, tour *entity.TourPackage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tour.ID = uuid.New()
	tour.CreatedAt, tour.UpdatedAt = time.Now(), time.Now()
	t := *tour
	r.s.tours[tour.ID] = &t
	return nil
}

func (r tourRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.TourPackage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tours[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r tourRepo) published() []*entity.TourPackage {
	var out []*entity.TourPackage
	for _, t := range r.s.tours {
		if t.IsBookable() {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (r tourRepo) FindPublished(_ context.Context, limit, offset int) ([]*entity.TourPackage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.published(), limit, offset), nil
}

func (r tourRepo) CountPublished(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.published())), nil
}

func (r tourRepo) Update(_ context.Context, tour *entity.TourPackage) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tours[tour.ID]
	if !ok || stored.CurrentBookings > tour.GroupSize {
		return false, nil
	}
	c := *tour
	c.CurrentBookings = stored.CurrentBookings
	r.s.tours[tour.ID] = &c
	tour.CurrentBookings = stored.CurrentBookings
	return true, nil
}

func (r tourRepo) IncrementBookings(ctx context.Context, id uuid.UUID, count int) (int, bool, error) {
	return r.adjust(ctx, id, count)
}

func (r tourRepo) DecrementBookings(ctx context.Context, id uuid.UUID, count int) (int, bool, error) {
	return r.adjust(ctx, id, -count)
}

func (r tourRepo) adjust(ctx context.Context, id uuid.UUID, delta int) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tours[id]
	if !ok {
		return 0, false, nil
	}

	var err error
	if delta > 0 {
		err = ledger.CheckIncrement(t.CurrentBookings, t.GroupSize, delta)
	} else {
		err = ledger.CheckDecrement(t.CurrentBookings, -delta)
	}
	if err != nil {
		return 0, false, nil
	}

	t.CurrentBookings += delta
	r.s.record(ctx, func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		t.CurrentBookings -= delta
	})
	return t.CurrentBookings, true, nil
}

// ---- bookings ----

type bookingRepo struct{ s *store }

func (r bookingRepo) CreateWithCode(ctx context.Context, booking *entity.Booking) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.codes[booking.BookingCode]; taken {
		return false, nil
	}

	booking.ID = uuid.New()
	booking.CreatedAt, booking.UpdatedAt = time.Now(), time.Now()
	c := *booking
	r.s.bookings[booking.ID] = &c
	r.s.codes[booking.BookingCode] = booking.ID

	id, code := booking.ID, booking.BookingCode
	r.s.record(ctx, func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.bookings, id)
		delete(r.s.codes, code)
	})
	return true, nil
}

func (r bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r bookingRepo) FindByCode(ctx context.Context, code string) (*entity.Booking, error) {
	r.s.mu.Lock()
	id, ok := r.s.codes[strings.ToUpper(code)]
	r.s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r bookingRepo) FindByCodeAndEmail(ctx context.Context, code, email string) (*entity.Booking, error) {
	b, err := r.FindByCode(ctx, code)
	if b == nil || err != nil || !strings.EqualFold(b.ContactEmail, email) {
		return nil, err
	}
	return b, nil
}

func (r bookingRepo) filter(f repository.BookingFilter) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if f.TravelerID != nil && b.TravelerID != *f.TravelerID {
			continue
		}
		if f.OperatorID != nil {
			t, ok := r.s.tours[b.TourPackageID]
			if !ok || t.OperatorID != *f.OperatorID {
				continue
			}
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TravelDate.Equal(out[j].TravelDate) {
			return out[i].TravelDate.Before(out[j].TravelDate)
		}
		return out[i].BookingCode < out[j].BookingCode
	})
	return out
}

func (r bookingRepo) FindAll(_ context.Context, f repository.BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.filter(f), limit, offset), nil
}

func (r bookingRepo) Count(_ context.Context, f repository.BookingFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.filter(f))), nil
}

func (r bookingRepo) FindConfirmedBefore(_ context.Context, day time.Time, limit int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.filter(repository.BookingFilter{Statuses: []entity.BookingStatus{entity.BookingStatusConfirmed}}) {
		if b.TravelDate.Before(day) {
			out = append(out, b)
		}
	}
	return page(out, limit, 0), nil
}

func (r bookingRepo) Stats(_ context.Context, f repository.BookingFilter) (*entity.BookingStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := &entity.BookingStats{}
	var paid int64
	for _, b := range r.filter(f) {
		st.TotalBookings++
		st.TotalPeople += int64(b.TotalPeople())
		switch b.Status {
		case entity.BookingStatusPending:
			st.PendingBookings++
		case entity.BookingStatusConfirmed:
			st.ConfirmedBookings++
		case entity.BookingStatusCancelled:
			st.CancelledBookings++
		case entity.BookingStatusCompleted:
			st.CompletedBookings++
		case entity.BookingStatusRefunded:
			st.RefundedBookings++
		}
		if b.Status == entity.BookingStatusConfirmed || b.Status == entity.BookingStatusCompleted {
			paid++
			st.TotalSpent = st.TotalSpent.Add(b.TotalAmount)
			st.TotalRevenue = st.TotalRevenue.Add(b.OperatorAmount)
			st.TotalCommission = st.TotalCommission.Add(b.CommissionAmount)
		}
	}
	if paid > 0 {
		st.AverageBookingValue = st.TotalSpent.Div(decimal.NewFromInt(paid)).Round(2)
	}
	return st, nil
}

func (r bookingRepo) UpdateStatus(ctx context.Context, booking *entity.Booking, expected entity.BookingStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bookings[booking.ID]
	if !ok || stored.Status != expected {
		return false, nil
	}

	prev := *stored
	c := *booking
	c.UpdatedAt = time.Now()
	r.s.bookings[booking.ID] = &c
	r.s.record(ctx, func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.bookings[prev.ID] = &prev
	})
	return true, nil
}

// ---- history ----

type historyRepo struct{ s *store }

func (r historyRepo) Append(ctx context.Context, entry *entity.BookingStatusHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.historyErr != nil {
		return r.s.historyErr
	}

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.s.history = append(r.s.history, entry)
	n := len(r.s.history)
	r.s.record(ctx, func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.history = r.s.history[:n-1]
	})
	return nil
}

func (r historyRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.BookingStatusHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.BookingStatusHistory
	for _, h := range r.s.history {
		if h.BookingID == bookingID {
			out = append(out, h)
		}
	}
	return out, nil
}

func containsStatus(list []entity.BookingStatus, s entity.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
