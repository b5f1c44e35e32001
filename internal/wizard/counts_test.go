package wizard

import (
	"math"
	"testing"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

func TestUpdateCountStaysWithinBounds(t *testing.T) {
	plan := samplePlan()
	deltas := []int{1, -1, 5, -5, 100, -100, math.MaxInt, math.MinInt}

	for _, c := range domain.Categories {
		b := CategoryBounds(plan, nil, c)
		counts := models.DefaultCounts()
		for i := 0; i < 3; i++ {
			for _, d := range deltas {
				counts = UpdateCount(counts, c, d, b)
				got := counts.Get(c)
				if got < b.Min || got > b.Max {
					t.Fatalf("%s: count %d outside [%d,%d] after delta %d", c, got, b.Min, b.Max, d)
				}
			}
		}
	}
}

func TestUpdateCountTouchesOnlyOneCategory(t *testing.T) {
	plan := samplePlan()
	counts := models.GroupCounts{Adults: 2, Children: 1, Students: 1}
	next := UpdateCount(counts, domain.Child, 1, CategoryBounds(plan, nil, domain.Child))

	if next.Children != 2 {
		t.Fatalf("children = %d, want 2", next.Children)
	}
	if next.Adults != 2 || next.Students != 1 || next.Infants != 0 || next.Youth != 0 {
		t.Fatalf("other categories changed: %+v", next)
	}
	if counts.Children != 1 {
		t.Fatalf("input mutated: %+v", counts)
	}
}

func TestAdultsNeverBelowOne(t *testing.T) {
	plan := samplePlan()
	b := CategoryBounds(plan, nil, domain.Adult)
	counts := UpdateCount(models.DefaultCounts(), domain.Adult, -10, b)
	if counts.Adults != 1 {
		t.Fatalf("adults = %d, want 1", counts.Adults)
	}

	plan.MaxAdults = 0
	if b := CategoryBounds(plan, nil, domain.Adult); b.Min != 1 || b.Max != 1 {
		t.Fatalf("adult bounds with zero max = %+v, want [1,1]", b)
	}
}

func TestHiddenCategory(t *testing.T) {
	plan := samplePlan()
	if Offered(plan, domain.Youth) {
		t.Fatalf("youth has max 0 and must be hidden")
	}
	if b := CategoryBounds(plan, nil, domain.Youth); b.Max != 0 {
		t.Fatalf("youth bounds = %+v", b)
	}
	for _, opt := range Options(models.DefaultCounts(), plan, nil) {
		if opt.Category == domain.Youth {
			t.Fatalf("hidden category listed in options")
		}
	}
	if len(Options(models.DefaultCounts(), plan, nil)) != 4 {
		t.Fatalf("expected 4 offered categories")
	}
}

func TestSlotCapacityCapsBounds(t *testing.T) {
	plan := samplePlan()
	slot := sampleSlots()[0]

	if b := CategoryBounds(plan, &slot, domain.Adult); b.Max != 3 {
		t.Fatalf("adult max with capacity 3 = %d", b.Max)
	}
	if b := CategoryBounds(plan, &slot, domain.Student); b.Max != 3 {
		t.Fatalf("unknown capacity must fall back to plan max, got %d", b.Max)
	}

	counts := ClampCounts(models.GroupCounts{Adults: 6, Children: 3, Students: 2}, plan, &slot)
	if counts.Adults != 3 || counts.Children != 1 || counts.Students != 2 {
		t.Fatalf("clamped counts = %+v", counts)
	}
}
