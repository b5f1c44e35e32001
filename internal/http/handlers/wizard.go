package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/http/middleware"
	"tourdesk/internal/services"
	"tourdesk/internal/wizard"
)

type startWizardRequest struct {
	Flow      string `json:"flow"`
	BookingID int64  `json:"booking_id"`
}

// POST /api/wizard/sessions
func (a *API) StartWizard(c *gin.Context) {
	var req startWizardRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	flow, err := wizard.ParseFlow(req.Flow)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	v, err := a.Wizard.Start(c.Request.Context(), flow, req.BookingID, middleware.GetSession(c).Username())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GET /api/wizard/sessions/:id
func (a *API) GetWizard(c *gin.Context) {
	v, err := a.Wizard.Get(c.Request.Context(), c.Param("id"))
	respondView(c, v, err)
}

// DELETE /api/wizard/sessions/:id
func (a *API) AbandonWizard(c *gin.Context) {
	if err := a.Wizard.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type selectTourRequest struct {
	TourID int64 `json:"tour_id"`
}

// PUT /api/wizard/sessions/:id/tour
func (a *API) SelectTour(c *gin.Context) {
	var req selectTourRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.TourID <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "tour_id", Msg: "required"})
		return
	}
	v, err := a.Wizard.SelectTour(c.Request.Context(), c.Param("id"), req.TourID)
	respondView(c, v, err)
}

// PUT /api/wizard/sessions/:id/date
func (a *API) SelectDate(c *gin.Context) {
	var req services.DateSelection
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := a.Wizard.SelectDate(c.Request.Context(), c.Param("id"), req)
	respondView(c, v, err)
}

type selectTimeSlotRequest struct {
	TimeSlotID int64 `json:"time_slot_id"`
}

// PUT /api/wizard/sessions/:id/time-slot
func (a *API) SelectTimeSlot(c *gin.Context) {
	var req selectTimeSlotRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.TimeSlotID <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "time_slot_id", Msg: "required"})
		return
	}
	v, err := a.Wizard.SelectTimeSlot(c.Request.Context(), c.Param("id"), req.TimeSlotID)
	respondView(c, v, err)
}

type updateCountRequest struct {
	Category string `json:"category"`
	Delta    int    `json:"delta"`
}

// POST /api/wizard/sessions/:id/counts
func (a *API) UpdateCount(c *gin.Context) {
	var req updateCountRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	cat, err := domain.ParseCategory(req.Category)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	v, err := a.Wizard.UpdateCount(c.Request.Context(), c.Param("id"), cat, req.Delta)
	respondView(c, v, err)
}

// PUT /api/wizard/sessions/:id/customer
func (a *API) SetCustomer(c *gin.Context) {
	var req models.CustomerInfo
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := a.Wizard.SetCustomer(c.Request.Context(), c.Param("id"), req)
	respondView(c, v, err)
}

// PUT /api/wizard/sessions/:id/travelers/:index
func (a *API) SetTraveler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_index", "invalid traveler index", nil)
		return
	}
	var req models.TravelerDetail
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := a.Wizard.SetTraveler(c.Request.Context(), c.Param("id"), index, req)
	respondView(c, v, err)
}

// POST /api/wizard/sessions/:id/next
func (a *API) NextStep(c *gin.Context) {
	v, err := a.Wizard.Next(c.Request.Context(), c.Param("id"))
	respondView(c, v, err)
}

// POST /api/wizard/sessions/:id/back
func (a *API) PreviousStep(c *gin.Context) {
	v, err := a.Wizard.Back(c.Request.Context(), c.Param("id"))
	respondView(c, v, err)
}

// GET /api/wizard/sessions/:id/quote
func (a *API) GetQuote(c *gin.Context) {
	q, err := a.Wizard.Quote(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// POST /api/wizard/sessions/:id/submit
func (a *API) SubmitWizard(c *gin.Context) {
	res, err := a.Wizard.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	status := http.StatusOK
	if res.Flow == wizard.FlowCreate {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func respondView(c *gin.Context, v wizard.View, err error) {
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
