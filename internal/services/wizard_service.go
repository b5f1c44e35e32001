package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"
	"tourdesk/internal/wizard"
)

// TourBackend is the part of the tour API the wizard talks to.
type TourBackend interface {
	ListPlans(ctx context.Context) ([]models.TourPlan, error)
	GetPlan(ctx context.Context, id int64) (models.TourPlan, error)
	ListDates(ctx context.Context, tourID int64) ([]models.TourDate, error)
	ListTimeSlots(ctx context.Context, dateID int64) ([]models.TourTimeSlot, error)
	GetBooking(ctx context.Context, id int64) (models.Booking, error)
	CreateBooking(ctx context.Context, req wizard.CreateBookingRequest) (models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, req wizard.UpdateBookingRequest) (models.Booking, error)
}

type SubmissionRecorder interface {
	Insert(ctx context.Context, s models.Submission) (int64, error)
}

// WizardService runs booking wizard sessions kept in Store. Backend fetches
// happen outside the per-session lock; their results are applied only when
// the session generation has not moved on in the meantime.
type WizardService struct {
	Tours       TourBackend
	Store       repositories.SessionStore
	Submissions SubmissionRecorder
	Validate    *validator.Validate
	Now         func() time.Time
	NewID       func() string

	locks keyedMutex
}

func NewWizardService(tours TourBackend, store repositories.SessionStore, submissions SubmissionRecorder) *WizardService {
	return &WizardService{
		Tours:       tours,
		Store:       store,
		Submissions: submissions,
		Validate:    NewValidator(),
		Now:         utils.NowUTC,
		NewID:       uuid.NewString,
	}
}

// DateSelection picks a date either by id or by calendar day (YYYY-MM-DD).
type DateSelection struct {
	DateID int64  `json:"date_id"`
	Date   string `json:"date"`
}

type SubmitResult struct {
	Booking models.Booking    `json:"booking"`
	Flow    wizard.Flow       `json:"flow"`
	Quote   wizard.PriceQuote `json:"quote"`
}

func (w *WizardService) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now().UTC()
}

func (w *WizardService) ListTours(ctx context.Context, activeOnly bool) ([]models.TourPlan, error) {
	plans, err := w.Tours.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return plans, nil
	}
	out := make([]models.TourPlan, 0, len(plans))
	for _, p := range plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// Start opens a session. The edit flow loads the booking and pre-selects its
// tour, date and time slot from the first booking item.
func (w *WizardService) Start(ctx context.Context, flow wizard.Flow, bookingID int64, actor string) (wizard.View, error) {
	reqID := utils.RequestIDFrom(ctx)
	var s *wizard.Session
	switch flow {
	case wizard.FlowCreate:
		s = wizard.NewSession(w.NewID(), flow, w.now())
	case wizard.FlowEdit:
		if bookingID <= 0 {
			return wizard.View{}, domain.ValidationError{Field: "booking_id", Msg: "required for the edit flow"}
		}
		var err error
		s, err = w.bootstrapEdit(ctx, bookingID)
		if err != nil {
			return wizard.View{}, err
		}
	default:
		return wizard.View{}, domain.ValidationError{Field: "flow", Msg: fmt.Sprintf("unknown flow %q", flow)}
	}
	s.CreatedBy = actor

	if err := w.Store.Save(ctx, s); err != nil {
		return wizard.View{}, err
	}
	utils.LogEventf(reqID, "wizard", "start", "session_id=%s flow=%s booking_id=%d", s.ID, s.Flow, s.BookingID)
	return s.View(), nil
}

func (w *WizardService) bootstrapEdit(ctx context.Context, bookingID int64) (*wizard.Session, error) {
	booking, err := w.Tours.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if len(booking.Items) == 0 {
		return nil, domain.ValidationError{Field: "items", Msg: "booking has no items to edit"}
	}
	item := booking.Items[0]
	plan, err := w.Tours.GetPlan(ctx, item.TourPlan)
	if err != nil {
		return nil, err
	}

	s := wizard.NewEditSession(w.NewID(), booking, w.now())
	gen, err := s.SelectTour(plan)
	if err != nil {
		return nil, err
	}
	dates, err := w.Tours.ListDates(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	s.ApplyDates(gen, dates)

	for _, d := range s.Availability.Dates {
		slots, err := w.Tours.ListTimeSlots(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		if !containsSlot(slots, item.TimeSlot) {
			continue
		}
		gen, err := s.SelectDate(d)
		if err != nil {
			return nil, err
		}
		s.ApplyTimeSlots(gen, slots)
		if err := s.SelectTimeSlot(item.TimeSlot); err != nil {
			return nil, err
		}
		return s, nil
	}
	// the booked slot is no longer listed; the user picks a new one
	utils.LogEventf(utils.RequestIDFrom(ctx), "wizard", "bootstrap_edit", "booking_id=%d time_slot=%d not listed", bookingID, item.TimeSlot)
	return s, nil
}

func containsSlot(slots []models.TourTimeSlot, id int64) bool {
	for _, sl := range slots {
		if sl.ID == id {
			return true
		}
	}
	return false
}

func (w *WizardService) Get(ctx context.Context, id string) (wizard.View, error) {
	s, err := w.Store.Load(ctx, id)
	if err != nil {
		return wizard.View{}, err
	}
	return s.View(), nil
}

// Abandon drops a session that will not be submitted.
func (w *WizardService) Abandon(ctx context.Context, id string) error {
	unlock := w.locks.Lock(id)
	defer unlock()
	if _, err := w.Store.Load(ctx, id); err != nil {
		return err
	}
	utils.LogEventf(utils.RequestIDFrom(ctx), "wizard", "abandon", "session_id=%s", id)
	return w.Store.Delete(ctx, id)
}

// mutate runs fn on the stored session under the session lock and saves the
// result when fn succeeds.
func (w *WizardService) mutate(ctx context.Context, id string, fn func(*wizard.Session) error) (*wizard.Session, error) {
	unlock := w.locks.Lock(id)
	defer unlock()

	s, err := w.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.Touch(w.now())
	if err := w.Store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// SelectTour sets the tour, clears everything downstream and loads its dates.
func (w *WizardService) SelectTour(ctx context.Context, id string, tourID int64) (wizard.View, error) {
	if _, err := w.Store.Load(ctx, id); err != nil {
		return wizard.View{}, err
	}
	plan, err := w.Tours.GetPlan(ctx, tourID)
	if err != nil {
		return wizard.View{}, err
	}

	var gen int64
	s, err := w.mutate(ctx, id, func(s *wizard.Session) error {
		var err error
		gen, err = s.SelectTour(plan)
		return err
	})
	if err != nil {
		return wizard.View{}, err
	}

	dates, err := w.Tours.ListDates(ctx, plan.ID)
	if err != nil {
		return wizard.View{}, err
	}
	if applied, err := w.applyFetch(ctx, id, gen, "dates", func(s *wizard.Session) bool { return s.ApplyDates(gen, dates) }); err != nil {
		return wizard.View{}, err
	} else if applied != nil {
		s = applied
	}
	return s.View(), nil
}

// SelectDate picks a listed date, clears the time slot and loads the date's
// slots. A manually entered day that is not listed is a conflict.
func (w *WizardService) SelectDate(ctx context.Context, id string, sel DateSelection) (wizard.View, error) {
	var (
		gen  int64
		date models.TourDate
	)
	s, err := w.mutate(ctx, id, func(s *wizard.Session) error {
		switch {
		case sel.DateID > 0:
			d, ok := s.Availability.DateByID(sel.DateID)
			if !ok {
				return domain.ConflictError{Resource: "date", Msg: "date is no longer available", Err: wizard.ErrDateUnavailable}
			}
			date = d
		case strings.TrimSpace(sel.Date) != "":
			d, err := s.Availability.MatchDate(sel.Date)
			if err != nil {
				return err
			}
			date = d
		default:
			return domain.ValidationError{Field: "date", Msg: "date_id or date is required"}
		}
		var err error
		gen, err = s.SelectDate(date)
		return err
	})
	if err != nil {
		return wizard.View{}, err
	}

	slots, err := w.Tours.ListTimeSlots(ctx, date.ID)
	if err != nil {
		return wizard.View{}, err
	}
	if applied, err := w.applyFetch(ctx, id, gen, "time_slots", func(s *wizard.Session) bool { return s.ApplyTimeSlots(gen, slots) }); err != nil {
		return wizard.View{}, err
	} else if applied != nil {
		s = applied
	}
	return s.View(), nil
}

// applyFetch stores a fetch result if the session still has generation gen.
// A nil session means the result was stale and dropped.
func (w *WizardService) applyFetch(ctx context.Context, id string, gen int64, what string, apply func(*wizard.Session) bool) (*wizard.Session, error) {
	s, err := w.mutate(ctx, id, func(s *wizard.Session) error {
		if !apply(s) {
			return errStaleFetch
		}
		return nil
	})
	if errors.Is(err, errStaleFetch) {
		utils.LogEventf(utils.RequestIDFrom(ctx), "wizard", "stale_fetch", "session_id=%s what=%s generation=%d", id, what, gen)
		latest, err := w.Store.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		return latest, nil
	}
	return s, err
}

var errStaleFetch = errors.New("stale fetch")

func (w *WizardService) SelectTimeSlot(ctx context.Context, id string, slotID int64) (wizard.View, error) {
	return w.view(w.mutate(ctx, id, func(s *wizard.Session) error {
		return s.SelectTimeSlot(slotID)
	}))
}

func (w *WizardService) UpdateCount(ctx context.Context, id string, c domain.Category, delta int) (wizard.View, error) {
	return w.view(w.mutate(ctx, id, func(s *wizard.Session) error {
		return s.UpdateCount(c, delta)
	}))
}

// SetCustomer stores the contact details as typed; completeness and format
// are checked when leaving the step.
func (w *WizardService) SetCustomer(ctx context.Context, id string, info models.CustomerInfo) (wizard.View, error) {
	return w.view(w.mutate(ctx, id, func(s *wizard.Session) error {
		return s.SetCustomer(info)
	}))
}

func (w *WizardService) SetTraveler(ctx context.Context, id string, index int, t models.TravelerDetail) (wizard.View, error) {
	return w.view(w.mutate(ctx, id, func(s *wizard.Session) error {
		if email := strings.TrimSpace(t.Email); email != "" {
			if err := w.validator().Var(email, "email"); err != nil {
				return domain.ValidationError{Field: "email", Msg: "must be a valid email address"}
			}
		}
		return s.SetTraveler(index, t)
	}))
}

func (w *WizardService) Next(ctx context.Context, id string) (wizard.View, error) {
	return w.view(w.mutate(ctx, id, func(s *wizard.Session) error {
		if s.Step == wizard.StepCustomerInfo {
			if err := ValidateCustomer(w.validator(), s.Customer); err != nil {
				return err
			}
		}
		return s.Next()
	}))
}

func (w *WizardService) Back(ctx context.Context, id string) (wizard.View, error) {
	return w.view(w.mutate(ctx, id, func(s *wizard.Session) error {
		return s.Back()
	}))
}

func (w *WizardService) Quote(ctx context.Context, id string) (wizard.PriceQuote, error) {
	s, err := w.Store.Load(ctx, id)
	if err != nil {
		return wizard.PriceQuote{}, err
	}
	return s.Quote()
}

// Submit sends the session to the tour backend. The session lock is held for
// the whole call so a double click cannot create two bookings. On success the
// session is deleted; on failure it stays in the manifest step untouched.
func (w *WizardService) Submit(ctx context.Context, id string) (SubmitResult, error) {
	reqID := utils.RequestIDFrom(ctx)
	unlock := w.locks.Lock(id)
	defer unlock()

	s, err := w.Store.Load(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}
	quote, err := s.Quote()
	if err != nil {
		return SubmitResult{}, err
	}

	var booking models.Booking
	switch s.Flow {
	case wizard.FlowCreate:
		req, err := wizard.BuildCreateRequest(s)
		if err != nil {
			return SubmitResult{}, err
		}
		booking, err = w.Tours.CreateBooking(ctx, req)
		if err != nil {
			utils.LogEventf(reqID, "wizard", "submit_failed", "session_id=%s flow=create err=%v", id, err)
			return SubmitResult{}, err
		}
	case wizard.FlowEdit:
		req, err := wizard.BuildUpdateRequest(s)
		if err != nil {
			return SubmitResult{}, err
		}
		booking, err = w.Tours.UpdateBooking(ctx, s.BookingID, req)
		if err != nil {
			utils.LogEventf(reqID, "wizard", "submit_failed", "session_id=%s flow=edit booking_id=%d err=%v", id, s.BookingID, err)
			return SubmitResult{}, err
		}
	default:
		return SubmitResult{}, domain.ValidationError{Field: "flow", Msg: "unknown flow"}
	}

	if err := w.Store.Delete(ctx, id); err != nil {
		utils.LogEventf(reqID, "wizard", "submit_cleanup", "session_id=%s err=%v", id, err)
	}
	if w.Submissions != nil {
		_, err := w.Submissions.Insert(ctx, models.Submission{
			SessionID: s.ID,
			BookingID: booking.ID,
			Flow:      string(s.Flow),
			Total:     utils.FormatMoney(quote.Total),
			Travelers: len(s.Travelers),
			CreatedBy: s.CreatedBy,
			CreatedAt: w.now(),
		})
		if err != nil {
			utils.LogEventf(reqID, "wizard", "submit_audit", "session_id=%s booking_id=%d err=%v", id, booking.ID, err)
		}
	}
	utils.LogEventf(reqID, "wizard", "submit", "session_id=%s flow=%s booking_id=%d travelers=%d", id, s.Flow, booking.ID, len(s.Travelers))
	return SubmitResult{Booking: booking, Flow: s.Flow, Quote: quote}, nil
}

func (w *WizardService) view(s *wizard.Session, err error) (wizard.View, error) {
	if err != nil {
		return wizard.View{}, err
	}
	return s.View(), nil
}

func (w *WizardService) validator() *validator.Validate {
	if w.Validate == nil {
		return NewValidator()
	}
	return w.Validate
}
