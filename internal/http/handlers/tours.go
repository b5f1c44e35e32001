package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/tours?active=1
func (a *API) ListTours(c *gin.Context) {
	activeOnly := c.Query("active") == "1" || c.Query("active") == "true"
	plans, err := a.Wizard.ListTours(c.Request.Context(), activeOnly)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}
