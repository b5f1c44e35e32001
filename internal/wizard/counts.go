// Package wizard holds the booking wizard's state machine and the pure
// computations behind it: group composition, availability lookup, pricing,
// traveler manifest sizing and request assembly.
package wizard

import (
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

// Bounds is the inclusive range a category count may take.
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (b Bounds) Clamp(n int) int {
	if n < b.Min {
		return b.Min
	}
	if n > b.Max {
		return b.Max
	}
	return n
}

// Offered reports whether the plan sells category c. A plan maximum of zero
// hides the category; adults are always offered.
func Offered(plan models.TourPlan, c domain.Category) bool {
	return c == domain.Adult || plan.Terms(c).Max > 0
}

// CategoryBounds combines the plan maximum with the slot's remaining capacity
// when a slot is known. The capacity cap is best effort; the backend has the
// final say.
func CategoryBounds(plan models.TourPlan, slot *models.TourTimeSlot, c domain.Category) Bounds {
	max := plan.Terms(c).Max
	if !Offered(plan, c) {
		max = 0
	}
	if slot != nil {
		if remaining, ok := slot.Remaining(c); ok && remaining < max {
			max = remaining
		}
	}
	min := c.Min()
	if max < min {
		max = min
	}
	return Bounds{Min: min, Max: max}
}

// UpdateCount applies delta to one category and clamps the result. Other
// categories are returned unchanged.
func UpdateCount(counts models.GroupCounts, c domain.Category, delta int, b Bounds) models.GroupCounts {
	current := counts.Get(c)
	next := current + delta
	// saturate instead of wrapping on huge deltas
	if delta > 0 && next < current {
		next = b.Max
	}
	if delta < 0 && next > current {
		next = b.Min
	}
	return counts.With(c, b.Clamp(next))
}

// ClampCounts re-applies the bounds of every category, e.g. after a slot with
// less capacity was selected.
func ClampCounts(counts models.GroupCounts, plan models.TourPlan, slot *models.TourTimeSlot) models.GroupCounts {
	for _, c := range domain.Categories {
		counts = counts.With(c, CategoryBounds(plan, slot, c).Clamp(counts.Get(c)))
	}
	return counts
}

// CategoryOption describes one category as the composition step shows it.
type CategoryOption struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
	Bounds   Bounds          `json:"bounds"`
	Price    string          `json:"price"`
	MinAge   int             `json:"min_age,omitempty"`
	MaxAge   int             `json:"max_age,omitempty"`
}

// Options lists the offered categories only; hidden ones are left out entirely.
func Options(counts models.GroupCounts, plan models.TourPlan, slot *models.TourTimeSlot) []CategoryOption {
	out := make([]CategoryOption, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		if !Offered(plan, c) {
			continue
		}
		terms := plan.Terms(c)
		out = append(out, CategoryOption{
			Category: c,
			Count:    counts.Get(c),
			Bounds:   CategoryBounds(plan, slot, c),
			Price:    terms.Price,
			MinAge:   terms.MinAge,
			MaxAge:   terms.MaxAge,
		})
	}
	return out
}
