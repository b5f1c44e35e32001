package models

import "tourdesk/internal/domain"

// GroupCounts holds the selected number of travelers per category. The JSON
// keys match the booking payload so it can be embedded in request bodies.
type GroupCounts struct {
	Adults   int `json:"num_adults"`
	Children int `json:"num_children"`
	Infants  int `json:"num_infants"`
	Youth    int `json:"num_youth"`
	Students int `json:"num_student_eu"`
}

func DefaultCounts() GroupCounts {
	return GroupCounts{Adults: 1}
}

func (g GroupCounts) Get(c domain.Category) int {
	switch c {
	case domain.Adult:
		return g.Adults
	case domain.Child:
		return g.Children
	case domain.Infant:
		return g.Infants
	case domain.Youth:
		return g.Youth
	case domain.Student:
		return g.Students
	}
	return 0
}

// With returns a copy with category c set to n.
func (g GroupCounts) With(c domain.Category, n int) GroupCounts {
	switch c {
	case domain.Adult:
		g.Adults = n
	case domain.Child:
		g.Children = n
	case domain.Infant:
		g.Infants = n
	case domain.Youth:
		g.Youth = n
	case domain.Student:
		g.Students = n
	}
	return g
}

func (g GroupCounts) Total() int {
	total := 0
	for _, c := range domain.Categories {
		total += g.Get(c)
	}
	return total
}
