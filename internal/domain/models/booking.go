package models

import (
	"encoding/json"
	"strings"
)

type BookingStatus string

const (
	BookingOpen      BookingStatus = "open"
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type TravelerDetail struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CustomerInfo is the booking contact collected in the create flow.
type CustomerInfo struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Country  string `json:"country" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

// Complete reports whether every field is non-blank.
func (c CustomerInfo) Complete() bool {
	for _, v := range []string{c.FullName, c.Email, c.Country, c.Phone} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type Booking struct {
	ID              int64            `json:"id"`
	Status          BookingStatus    `json:"status"`
	Items           []BookingItem    `json:"items"`
	TravelerDetails []TravelerDetail `json:"traveler_details"`
	TotalPrice      Stringish        `json:"total_price"`
	FullName        string           `json:"full_name"`
	Email           string           `json:"email"`
	Country         string           `json:"country"`
	Phone           string           `json:"phone"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

func (b Booking) Customer() CustomerInfo {
	return CustomerInfo{FullName: b.FullName, Email: b.Email, Country: b.Country, Phone: b.Phone}
}

// BookingItem keeps every field the backend sent in Fields so partial updates
// can echo them back untouched.
type BookingItem struct {
	ID       int64
	TourPlan int64
	TimeSlot int64
	Counts   GroupCounts
	Fields   map[string]json.RawMessage
}

type bookingItemWire struct {
	ID       int64 `json:"id"`
	TourPlan int64 `json:"tour_plan"`
	TimeSlot int64 `json:"time_slot"`
	GroupCounts
}

func (i *BookingItem) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var wire bookingItemWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	i.ID = wire.ID
	i.TourPlan = wire.TourPlan
	i.TimeSlot = wire.TimeSlot
	i.Counts = wire.GroupCounts
	i.Fields = fields
	return nil
}

func (i BookingItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Fields)+8)
	for k, v := range i.Fields {
		out[k] = v
	}
	if i.ID != 0 {
		out["id"] = i.ID
	}
	out["tour_plan"] = i.TourPlan
	out["time_slot"] = i.TimeSlot
	out["num_adults"] = i.Counts.Adults
	out["num_children"] = i.Counts.Children
	out["num_infants"] = i.Counts.Infants
	out["num_youth"] = i.Counts.Youth
	out["num_student_eu"] = i.Counts.Students
	return json.Marshal(out)
}
