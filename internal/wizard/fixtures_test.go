package wizard

import (
	"time"

	"tourdesk/internal/domain/models"
)

func intPtr(n int) *int { return &n }

func samplePlan() models.TourPlan {
	return models.TourPlan{
		ID:             7,
		Title:          "Sintra Day Trip",
		IsActive:       true,
		MaxAdults:      8,
		PriceAdult:     "45.00",
		MaxChildren:    4,
		PriceChild:     "20.00",
		MaxInfants:     2,
		PriceInfant:    "0.00",
		MaxYouth:       0,
		PriceYouth:     "30.00",
		MaxStudentEU:   3,
		PriceStudentEU: "35.10",
	}
}

func sampleDates() []models.TourDate {
	return []models.TourDate{
		{ID: 100, Date: "2025-06-10", TourPlan: 7},
		{ID: 101, Date: "2025-06-11T00:00:00+02:00", TourPlan: 7},
		{ID: 999, Date: "2025-06-12", TourPlan: 8},
	}
}

func sampleSlots() []models.TourTimeSlot {
	return []models.TourTimeSlot{
		{ID: 500, TourDate: 100, StartTime: "09:00:00", EndTime: "17:00:00", AvailableAdults: intPtr(3), AvailableChildren: intPtr(1)},
		{ID: 501, TourDate: 100, StartTime: "13:00:00", EndTime: "19:00:00"},
		{ID: 777, TourDate: 555, StartTime: "10:00:00"},
	}
}

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// readySelection returns a create-flow session with tour, date 100 and slot 501 selected.
func readySelection() *Session {
	s := NewSession("s-1", FlowCreate, testNow)
	gen, _ := s.SelectTour(samplePlan())
	s.ApplyDates(gen, sampleDates())
	gen, _ = s.SelectDate(sampleDates()[0])
	s.ApplyTimeSlots(gen, sampleSlots())
	_ = s.SelectTimeSlot(501)
	return s
}
