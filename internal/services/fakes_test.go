package services

import (
	"context"
	"sync"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/wizard"
)

func intPtr(n int) *int { return &n }

// fakeTours is an in-memory tour backend.
type fakeTours struct {
	mu       sync.Mutex
	plans    []models.TourPlan
	dates    map[int64][]models.TourDate
	slots    map[int64][]models.TourTimeSlot
	bookings map[int64]models.Booking

	created   []wizard.CreateBookingRequest
	updated   []wizard.UpdateBookingRequest
	submitErr error
	// beforeDates runs while ListDates is in flight
	beforeDates func()
}

func newFakeTours() *fakeTours {
	return &fakeTours{
		plans: []models.TourPlan{
			{ID: 7, Title: "Sintra Day Trip", IsActive: true, MaxAdults: 8, PriceAdult: "45.00", MaxChildren: 4, PriceChild: "20.00", MaxInfants: 2, PriceInfant: "0.00"},
			{ID: 8, Title: "Douro Valley", IsActive: false, MaxAdults: 6, PriceAdult: "80.00"},
		},
		dates: map[int64][]models.TourDate{
			7: {{ID: 100, Date: "2025-06-10", TourPlan: 7}, {ID: 101, Date: "2025-06-11T00:00:00+02:00", TourPlan: 7}},
			8: {{ID: 200, Date: "2025-07-01", TourPlan: 8}},
		},
		slots: map[int64][]models.TourTimeSlot{
			100: {{ID: 500, TourDate: 100, StartTime: "09:00:00", EndTime: "17:00:00", AvailableAdults: intPtr(3)}},
			101: {{ID: 510, TourDate: 101, StartTime: "10:00:00", EndTime: "18:00:00"}},
			200: {{ID: 600, TourDate: 200, StartTime: "08:00:00"}},
		},
		bookings: map[int64]models.Booking{},
	}
}

func (f *fakeTours) ListPlans(context.Context) ([]models.TourPlan, error) {
	return f.plans, nil
}

func (f *fakeTours) GetPlan(_ context.Context, id int64) (models.TourPlan, error) {
	for _, p := range f.plans {
		if p.ID == id {
			return p, nil
		}
	}
	return models.TourPlan{}, domain.NotFoundError{Resource: "tour plan"}
}

func (f *fakeTours) ListDates(_ context.Context, tourID int64) ([]models.TourDate, error) {
	if f.beforeDates != nil {
		hook := f.beforeDates
		f.beforeDates = nil
		hook()
	}
	return f.dates[tourID], nil
}

func (f *fakeTours) ListTimeSlots(_ context.Context, dateID int64) ([]models.TourTimeSlot, error) {
	return f.slots[dateID], nil
}

func (f *fakeTours) GetBooking(_ context.Context, id int64) (models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (f *fakeTours) CreateBooking(_ context.Context, req wizard.CreateBookingRequest) (models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return models.Booking{}, f.submitErr
	}
	f.created = append(f.created, req)
	return models.Booking{ID: 900 + int64(len(f.created)), Status: models.BookingPending}, nil
}

func (f *fakeTours) UpdateBooking(_ context.Context, id int64, req wizard.UpdateBookingRequest) (models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return models.Booking{}, f.submitErr
	}
	f.updated = append(f.updated, req)
	return models.Booking{ID: id, Status: models.BookingConfirmed}, nil
}

type fakeSubmissions struct {
	rows []models.Submission
}

func (f *fakeSubmissions) Insert(_ context.Context, s models.Submission) (int64, error) {
	f.rows = append(f.rows, s)
	return int64(len(f.rows)), nil
}

func (f *fakeSubmissions) List(_ context.Context, bookingID int64, _ domain.Pagination) ([]models.Submission, error) {
	out := []models.Submission{}
	for _, r := range f.rows {
		if bookingID == 0 || r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}
