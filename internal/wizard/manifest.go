package wizard

import (
	"strings"

	"tourdesk/internal/domain/models"
)

// ResizeTravelers returns a new list of length m. Entries below min(len, m)
// are copied as they are; growth appends blank entries and shrinking drops the
// tail. The input slice is never modified.
func ResizeTravelers(list []models.TravelerDetail, m int) []models.TravelerDetail {
	if m < 0 {
		m = 0
	}
	out := make([]models.TravelerDetail, m)
	copy(out, list)
	return out
}

// TravelersNamed reports whether every entry has a non-blank name.
func TravelersNamed(list []models.TravelerDetail) bool {
	for _, t := range list {
		if strings.TrimSpace(t.Name) == "" {
			return false
		}
	}
	return true
}
