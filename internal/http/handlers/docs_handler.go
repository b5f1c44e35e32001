package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings/:id/confirmation returns the confirmation PDF inline.
func (a *API) GetBookingConfirmationPDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := a.Docs.GenerateConfirmation(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
