package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GET /api/submissions?booking_id=&page=&page_size=
func (a *API) ListSubmissions(c *gin.Context) {
	var bookingID int64
	if raw := c.Query("booking_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid_booking_id", "invalid booking_id", nil)
			return
		}
		bookingID = id
	}
	p := pagination(c)
	rows, err := a.Submissions.List(c.Request.Context(), bookingID, p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "page": p.Page, "page_size": p.Limit()})
}
