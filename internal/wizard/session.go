package wizard

import (
	"fmt"
	"strings"
	"time"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

type Flow string

const (
	FlowCreate Flow = "create"
	FlowEdit   Flow = "edit"
)

func ParseFlow(s string) (Flow, error) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case FlowCreate, "":
		return FlowCreate, nil
	case FlowEdit:
		return FlowEdit, nil
	}
	return "", domain.ValidationError{Field: "flow", Msg: fmt.Sprintf("unknown flow %q", s)}
}

type Step string

const (
	StepSelection    Step = "selection"
	StepCustomerInfo Step = "customer_info"
	StepManifest     Step = "manifest"
)

// Steps lists the stages of the flow in order.
func (f Flow) Steps() []Step {
	if f == FlowEdit {
		return []Step{StepSelection, StepManifest}
	}
	return []Step{StepSelection, StepCustomerInfo, StepManifest}
}

// Session is everything the wizard collected so far. It is the only carrier of
// cross-step state; nothing is kept elsewhere between requests.
//
// Generation increases on every tour or date selection. A fetch started for an
// older generation must not be applied.
type Session struct {
	ID           string                  `json:"id"`
	Flow         Flow                    `json:"flow"`
	Step         Step                    `json:"step"`
	BookingID    int64                   `json:"booking_id,omitempty"`
	Original     *models.Booking         `json:"original,omitempty"`
	Tour         *models.TourPlan        `json:"tour,omitempty"`
	Date         *models.TourDate        `json:"date,omitempty"`
	TimeSlot     *models.TourTimeSlot    `json:"time_slot,omitempty"`
	Availability AvailabilityIndex       `json:"availability"`
	Counts       models.GroupCounts      `json:"counts"`
	Customer     models.CustomerInfo     `json:"customer"`
	Travelers    []models.TravelerDetail `json:"travelers"`
	Generation   int64                   `json:"generation"`
	CreatedBy    string                  `json:"created_by,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

func NewSession(id string, flow Flow, now time.Time) *Session {
	return &Session{
		ID:        id,
		Flow:      flow,
		Step:      StepSelection,
		Counts:    models.DefaultCounts(),
		Travelers: []models.TravelerDetail{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewEditSession seeds a session from an existing booking. The first booking
// item is the one being edited.
func NewEditSession(id string, booking models.Booking, now time.Time) *Session {
	s := NewSession(id, FlowEdit, now)
	s.BookingID = booking.ID
	b := booking
	s.Original = &b
	s.Customer = booking.Customer()
	s.Travelers = append([]models.TravelerDetail{}, booking.TravelerDetails...)
	if len(booking.Items) > 0 {
		s.Counts = booking.Items[0].Counts
	}
	return s
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}

// SelectTour sets the tour and clears everything downstream: dates, time
// slots, the selected date and slot, and the group counts. It returns the new
// generation the dates fetch must carry.
func (s *Session) SelectTour(plan models.TourPlan) (int64, error) {
	if s.Step != StepSelection {
		return 0, stepError(s.Step, "tour can only be changed in the selection step")
	}
	if s.Flow == FlowEdit && s.Tour != nil && s.Tour.ID != plan.ID {
		return 0, domain.ValidationError{Field: "tour", Msg: "tour of an existing booking cannot be changed"}
	}
	p := plan
	s.Tour = &p
	s.Date = nil
	s.TimeSlot = nil
	s.Availability = AvailabilityIndex{}
	if s.Flow == FlowCreate {
		s.Counts = models.DefaultCounts()
	} else {
		s.Counts = ClampCounts(s.Counts, p, nil)
	}
	s.Generation++
	return s.Generation, nil
}

// ApplyDates stores the dates fetched for generation gen. It returns false and
// leaves the session untouched when the selection moved on meanwhile.
func (s *Session) ApplyDates(gen int64, dates []models.TourDate) bool {
	if gen != s.Generation || s.Tour == nil {
		return false
	}
	kept := make([]models.TourDate, 0, len(dates))
	for _, d := range dates {
		if d.TourPlan == 0 || d.TourPlan == s.Tour.ID {
			kept = append(kept, d)
		}
	}
	s.Availability.Dates = kept
	return true
}

// SelectDate sets a date from the availability list, clears the selected time
// slot and the fetched slots, and returns the generation for the slots fetch.
func (s *Session) SelectDate(date models.TourDate) (int64, error) {
	if s.Step != StepSelection {
		return 0, stepError(s.Step, "date can only be changed in the selection step")
	}
	if s.Tour == nil {
		return 0, domain.ValidationError{Field: "tour", Msg: "select a tour first"}
	}
	if date.TourPlan != 0 && date.TourPlan != s.Tour.ID {
		return 0, domain.ValidationError{Field: "date", Msg: "date belongs to another tour"}
	}
	if _, ok := s.Availability.DateByID(date.ID); !ok {
		return 0, domain.ConflictError{Resource: "date", Msg: "date is no longer available", Err: ErrDateUnavailable}
	}
	d := date
	s.Date = &d
	s.TimeSlot = nil
	s.Availability.Slots = nil
	s.Generation++
	return s.Generation, nil
}

// ApplyTimeSlots stores the slots fetched for generation gen.
func (s *Session) ApplyTimeSlots(gen int64, slots []models.TourTimeSlot) bool {
	if gen != s.Generation || s.Date == nil {
		return false
	}
	kept := make([]models.TourTimeSlot, 0, len(slots))
	for _, sl := range slots {
		if sl.TourDate == 0 || sl.TourDate == s.Date.ID {
			kept = append(kept, sl)
		}
	}
	s.Availability.Slots = kept
	return true
}

// SelectTimeSlot picks one of the fetched slots of the selected date and
// re-clamps the counts to the slot's remaining capacity.
func (s *Session) SelectTimeSlot(slotID int64) error {
	if s.Step != StepSelection {
		return stepError(s.Step, "time slot can only be changed in the selection step")
	}
	if s.Date == nil || s.Tour == nil {
		return domain.ValidationError{Field: "date", Msg: "select a date first"}
	}
	slot, ok := s.Availability.SlotByID(slotID)
	if !ok {
		return domain.ConflictError{Resource: "time_slot", Msg: "time slot is no longer available"}
	}
	if slot.TourDate != 0 && slot.TourDate != s.Date.ID {
		return domain.ValidationError{Field: "time_slot", Msg: "time slot belongs to another date"}
	}
	s.TimeSlot = &slot
	s.Counts = ClampCounts(s.Counts, *s.Tour, s.capacitySlot())
	return nil
}

// UpdateCount changes one category by delta within its bounds.
func (s *Session) UpdateCount(c domain.Category, delta int) error {
	if s.Step != StepSelection {
		return stepError(s.Step, "counts can only be changed in the selection step")
	}
	if s.Tour == nil {
		return domain.ValidationError{Field: "tour", Msg: "select a tour first"}
	}
	if !c.Valid() {
		return domain.ValidationError{Field: "category", Msg: "unknown category"}
	}
	if !Offered(*s.Tour, c) {
		return domain.ValidationError{Field: c.String(), Msg: "not offered for this tour"}
	}
	s.Counts = UpdateCount(s.Counts, c, delta, CategoryBounds(*s.Tour, s.capacitySlot(), c))
	return nil
}

func (s *Session) SetCustomer(info models.CustomerInfo) error {
	if s.Flow != FlowCreate {
		return domain.ValidationError{Field: "customer", Msg: "customer details are fixed for an existing booking"}
	}
	if s.Step != StepCustomerInfo {
		return stepError(s.Step, "customer details are entered in the customer_info step")
	}
	s.Customer = models.CustomerInfo{
		FullName: strings.TrimSpace(info.FullName),
		Email:    strings.TrimSpace(info.Email),
		Country:  strings.TrimSpace(info.Country),
		Phone:    strings.TrimSpace(info.Phone),
	}
	return nil
}

func (s *Session) SetTraveler(index int, t models.TravelerDetail) error {
	if s.Step != StepManifest {
		return stepError(s.Step, "travelers are entered in the manifest step")
	}
	if index < 0 || index >= len(s.Travelers) {
		return domain.ValidationError{Field: "travelers", Msg: fmt.Sprintf("index %d out of range [0,%d)", index, len(s.Travelers))}
	}
	s.Travelers[index] = models.TravelerDetail{
		Name:  strings.TrimSpace(t.Name),
		Email: strings.TrimSpace(t.Email),
	}
	return nil
}

// Next advances one step when the current step is complete.
func (s *Session) Next() error {
	switch s.Step {
	case StepSelection:
		if err := s.selectionComplete(); err != nil {
			return err
		}
		if s.Flow == FlowCreate {
			s.Step = StepCustomerInfo
			return nil
		}
		s.enterManifest()
		return nil
	case StepCustomerInfo:
		if !s.Customer.Complete() {
			return domain.ValidationError{Field: "customer", Msg: "full name, email, country and phone are required"}
		}
		s.enterManifest()
		return nil
	case StepManifest:
		return stepError(s.Step, "manifest is the last step; submit instead")
	}
	return stepError(s.Step, "unknown step")
}

// Back returns to the previous step without clearing anything.
func (s *Session) Back() error {
	switch s.Step {
	case StepManifest:
		if s.Flow == FlowCreate {
			s.Step = StepCustomerInfo
		} else {
			s.Step = StepSelection
		}
		return nil
	case StepCustomerInfo:
		s.Step = StepSelection
		return nil
	}
	return stepError(s.Step, "already at the first step")
}

// CheckSubmit returns nil when the session can be submitted.
func (s *Session) CheckSubmit() error {
	if s.Step != StepManifest {
		return stepError(s.Step, "submission happens from the manifest step")
	}
	if err := s.selectionComplete(); err != nil {
		return err
	}
	if len(s.Travelers) != s.Counts.Total() {
		return domain.ValidationError{Field: "travelers", Msg: fmt.Sprintf("expected %d travelers, have %d", s.Counts.Total(), len(s.Travelers))}
	}
	if !TravelersNamed(s.Travelers) {
		return domain.ValidationError{Field: "travelers", Msg: "every traveler needs a name"}
	}
	if s.Flow == FlowCreate && !s.Customer.Complete() {
		return domain.ValidationError{Field: "customer", Msg: "customer details are incomplete"}
	}
	return nil
}

func (s *Session) CanSubmit() bool {
	return s.CheckSubmit() == nil
}

// Quote prices the current counts against the selected tour.
func (s *Session) Quote() (PriceQuote, error) {
	if s.Tour == nil {
		return PriceQuote{}, domain.ValidationError{Field: "tour", Msg: "select a tour first"}
	}
	return Quote(s.Counts, *s.Tour), nil
}

// capacitySlot is the slot whose remaining capacity caps the counts. When an
// existing booking stays on its own slot the reported capacity excludes the
// booking's own travelers, so those places are added back.
func (s *Session) capacitySlot() *models.TourTimeSlot {
	if s.TimeSlot == nil {
		return nil
	}
	if s.Flow == FlowEdit && s.Original != nil && len(s.Original.Items) > 0 && s.Original.Items[0].TimeSlot == s.TimeSlot.ID {
		slot := s.TimeSlot.WithHeld(s.Original.Items[0].Counts)
		return &slot
	}
	return s.TimeSlot
}

func (s *Session) enterManifest() {
	s.Travelers = ResizeTravelers(s.Travelers, s.Counts.Total())
	s.Step = StepManifest
}

func (s *Session) selectionComplete() error {
	switch {
	case s.Tour == nil:
		return domain.ValidationError{Field: "tour", Msg: "tour is required"}
	case s.Date == nil:
		return domain.ValidationError{Field: "date", Msg: "date is required"}
	case s.TimeSlot == nil:
		return domain.ValidationError{Field: "time_slot", Msg: "time slot is required"}
	}
	return nil
}

func stepError(step Step, msg string) error {
	return domain.ValidationError{Field: "step", Msg: fmt.Sprintf("%s (current step: %s)", msg, step)}
}

// View is the session as the dashboard renders it, with derived values.
type View struct {
	*Session
	Steps     []Step           `json:"steps"`
	Options   []CategoryOption `json:"options,omitempty"`
	Quote     *PriceQuote      `json:"quote,omitempty"`
	Days      []string         `json:"available_days"`
	CanSubmit bool             `json:"can_submit"`
}

func (s *Session) View() View {
	v := View{
		Session:   s,
		Steps:     s.Flow.Steps(),
		Days:      s.Availability.AvailableDays(),
		CanSubmit: s.CanSubmit(),
	}
	if s.Tour != nil {
		v.Options = Options(s.Counts, *s.Tour, s.capacitySlot())
		q := Quote(s.Counts, *s.Tour)
		v.Quote = &q
	}
	return v
}
