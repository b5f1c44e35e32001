package wizard

import (
	"encoding/json"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

// SingleItem is the booked tour/slot with its group counts.
type SingleItem struct {
	models.GroupCounts
	TourPlan int64 `json:"tour_plan"`
	TimeSlot int64 `json:"time_slot"`
}

// CreateBookingRequest is the body of POST /tour/booking/.
type CreateBookingRequest struct {
	BookNow         string                  `json:"book_now"`
	SingleItem      SingleItem              `json:"single_item"`
	TravelerDetails []models.TravelerDetail `json:"traveler_details"`
	FullName        string                  `json:"full_name"`
	Email           string                  `json:"email"`
	Country         string                  `json:"country"`
	Phone           string                  `json:"phone"`
}

// UpdateBookingRequest is the body of PATCH /tour/booking/{id}. Items carry
// every field of the original items; only time_slot and num_* differ.
type UpdateBookingRequest struct {
	TravelerDetails []models.TravelerDetail `json:"traveler_details"`
	Items           []models.BookingItem    `json:"items"`
}

// BuildCreateRequest flattens a completed create-flow session into one body.
func BuildCreateRequest(s *Session) (CreateBookingRequest, error) {
	if s.Flow != FlowCreate {
		return CreateBookingRequest{}, domain.ValidationError{Field: "flow", Msg: "session edits an existing booking"}
	}
	if err := s.CheckSubmit(); err != nil {
		return CreateBookingRequest{}, err
	}
	return CreateBookingRequest{
		BookNow: "true",
		SingleItem: SingleItem{
			GroupCounts: s.Counts,
			TourPlan:    s.Tour.ID,
			TimeSlot:    s.TimeSlot.ID,
		},
		TravelerDetails: copyTravelers(s.Travelers),
		FullName:        s.Customer.FullName,
		Email:           s.Customer.Email,
		Country:         s.Customer.Country,
		Phone:           s.Customer.Phone,
	}, nil
}

// BuildUpdateRequest produces the partial update for an edit-flow session.
// The first item takes the new slot and counts; every other field of every
// item is passed back as the backend sent it.
func BuildUpdateRequest(s *Session) (UpdateBookingRequest, error) {
	if s.Flow != FlowEdit || s.Original == nil {
		return UpdateBookingRequest{}, domain.ValidationError{Field: "flow", Msg: "session does not edit a booking"}
	}
	if err := s.CheckSubmit(); err != nil {
		return UpdateBookingRequest{}, err
	}

	items := make([]models.BookingItem, 0, len(s.Original.Items))
	for _, it := range s.Original.Items {
		items = append(items, copyItem(it))
	}
	if len(items) == 0 {
		items = append(items, models.BookingItem{TourPlan: s.Tour.ID})
	}
	items[0].TimeSlot = s.TimeSlot.ID
	items[0].Counts = s.Counts

	return UpdateBookingRequest{
		TravelerDetails: copyTravelers(s.Travelers),
		Items:           items,
	}, nil
}

func copyItem(it models.BookingItem) models.BookingItem {
	fields := make(map[string]json.RawMessage, len(it.Fields))
	for k, v := range it.Fields {
		fields[k] = append(json.RawMessage(nil), v...)
	}
	it.Fields = fields
	return it
}

func copyTravelers(in []models.TravelerDetail) []models.TravelerDetail {
	out := make([]models.TravelerDetail, len(in))
	copy(out, in)
	return out
}
