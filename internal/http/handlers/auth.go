package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/http/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = strings.TrimSpace(req.Email)
	}
	res, err := a.Auth.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/auth/logout
func (a *API) Logout(c *gin.Context) {
	if err := a.Auth.Logout(c.Request.Context(), middleware.GetSession(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/auth/session
func (a *API) CurrentSession(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetSession(c))
}
