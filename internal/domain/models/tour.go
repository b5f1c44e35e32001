package models

import "tourdesk/internal/domain"

// TourPlan is read-only from the wizard's point of view.
type TourPlan struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Duration         Stringish `json:"duration"`
	FreeCancellation bool      `json:"free_cancellation"`
	PickupIncluded   bool      `json:"pickup_included"`
	IsActive         bool      `json:"is_active"`

	MaxAdults   int       `json:"max_adults"`
	PriceAdult  Stringish `json:"price_adult"`
	MinAgeAdult int       `json:"min_age_adult,omitempty"`
	MaxAgeAdult int       `json:"max_age_adult,omitempty"`

	MaxChildren int       `json:"max_children"`
	PriceChild  Stringish `json:"price_child"`
	MinAgeChild int       `json:"min_age_child,omitempty"`
	MaxAgeChild int       `json:"max_age_child,omitempty"`

	MaxInfants   int       `json:"max_infants"`
	PriceInfant  Stringish `json:"price_infant"`
	MinAgeInfant int       `json:"min_age_infant,omitempty"`
	MaxAgeInfant int       `json:"max_age_infant,omitempty"`

	MaxYouth    int       `json:"max_youth"`
	PriceYouth  Stringish `json:"price_youth"`
	MinAgeYouth int       `json:"min_age_youth,omitempty"`
	MaxAgeYouth int       `json:"max_age_youth,omitempty"`

	MaxStudentEU    int       `json:"max_student_eu"`
	PriceStudentEU  Stringish `json:"price_student_eu"`
	MinAgeStudentEU int       `json:"min_age_student_eu,omitempty"`
	MaxAgeStudentEU int       `json:"max_age_student_eu,omitempty"`
}

// CategoryTerms are the per-category settings of a plan.
type CategoryTerms struct {
	Max    int
	Price  string
	MinAge int
	MaxAge int
}

func (p TourPlan) Terms(c domain.Category) CategoryTerms {
	switch c {
	case domain.Adult:
		return CategoryTerms{p.MaxAdults, p.PriceAdult.String(), p.MinAgeAdult, p.MaxAgeAdult}
	case domain.Child:
		return CategoryTerms{p.MaxChildren, p.PriceChild.String(), p.MinAgeChild, p.MaxAgeChild}
	case domain.Infant:
		return CategoryTerms{p.MaxInfants, p.PriceInfant.String(), p.MinAgeInfant, p.MaxAgeInfant}
	case domain.Youth:
		return CategoryTerms{p.MaxYouth, p.PriceYouth.String(), p.MinAgeYouth, p.MaxAgeYouth}
	case domain.Student:
		return CategoryTerms{p.MaxStudentEU, p.PriceStudentEU.String(), p.MinAgeStudentEU, p.MaxAgeStudentEU}
	}
	return CategoryTerms{}
}

type TourDate struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	TourPlan int64  `json:"tour_plan"`
}

// TourTimeSlot carries remaining capacity per category. A nil capacity means
// the backend did not report one.
type TourTimeSlot struct {
	ID        int64  `json:"id"`
	TourDate  int64  `json:"tour_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	AvailableAdults    *int `json:"available_adults,omitempty"`
	AvailableChildren  *int `json:"available_children,omitempty"`
	AvailableInfants   *int `json:"available_infants,omitempty"`
	AvailableYouth     *int `json:"available_youth,omitempty"`
	AvailableStudentEU *int `json:"available_student_eu,omitempty"`
}

func (s TourTimeSlot) Remaining(c domain.Category) (int, bool) {
	var v *int
	switch c {
	case domain.Adult:
		v = s.AvailableAdults
	case domain.Child:
		v = s.AvailableChildren
	case domain.Infant:
		v = s.AvailableInfants
	case domain.Youth:
		v = s.AvailableYouth
	case domain.Student:
		v = s.AvailableStudentEU
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// WithHeld returns a copy of the slot whose reported capacities also include
// places already held by held. Unknown capacities stay unknown.
func (s TourTimeSlot) WithHeld(held GroupCounts) TourTimeSlot {
	add := func(v *int, n int) *int {
		if v == nil {
			return nil
		}
		out := *v + n
		return &out
	}
	s.AvailableAdults = add(s.AvailableAdults, held.Adults)
	s.AvailableChildren = add(s.AvailableChildren, held.Children)
	s.AvailableInfants = add(s.AvailableInfants, held.Infants)
	s.AvailableYouth = add(s.AvailableYouth, held.Youth)
	s.AvailableStudentEU = add(s.AvailableStudentEU, held.Students)
	return s
}
