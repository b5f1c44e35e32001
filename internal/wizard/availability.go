package wizard

import (
	"errors"
	"fmt"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/utils"
)

var ErrDateUnavailable = errors.New("date not available")

// AvailabilityIndex is the list of dates fetched for the selected tour and the
// time slots fetched for the selected date.
type AvailabilityIndex struct {
	Dates []models.TourDate     `json:"dates"`
	Slots []models.TourTimeSlot `json:"slots"`
}

// MatchDate finds the listed date whose calendar day equals the picked one.
// Both sides are reduced to YYYY-MM-DD before comparison.
func (ix AvailabilityIndex) MatchDate(picked string) (models.TourDate, error) {
	day, err := utils.DateOnly(picked)
	if err != nil {
		return models.TourDate{}, domain.ValidationError{Field: "date", Msg: err.Error(), Err: err}
	}
	for _, d := range ix.Dates {
		listed, err := utils.DateOnly(d.Date)
		if err != nil {
			continue
		}
		if listed == day {
			return d, nil
		}
	}
	return models.TourDate{}, domain.ConflictError{
		Resource: "date",
		Msg:      fmt.Sprintf("%s is not available for this tour", day),
		Err:      ErrDateUnavailable,
	}
}

func (ix AvailabilityIndex) DateByID(id int64) (models.TourDate, bool) {
	for _, d := range ix.Dates {
		if d.ID == id {
			return d, true
		}
	}
	return models.TourDate{}, false
}

func (ix AvailabilityIndex) SlotByID(id int64) (models.TourTimeSlot, bool) {
	for _, s := range ix.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return models.TourTimeSlot{}, false
}

// AvailableDays returns the normalized days in listing order, skipping
// entries the backend sent in an unreadable format.
func (ix AvailabilityIndex) AvailableDays() []string {
	out := make([]string, 0, len(ix.Dates))
	for _, d := range ix.Dates {
		if day, err := utils.DateOnly(d.Date); err == nil {
			out = append(out, day)
		}
	}
	return out
}
