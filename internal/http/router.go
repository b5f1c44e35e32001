package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/auth"
	intconfig "tourdesk/internal/config"
	h "tourdesk/internal/http/handlers"
	"tourdesk/internal/http/middleware"
)

// Deps bundles what the router needs beyond config.
type Deps struct {
	API     *h.API
	Tokens  *auth.TokenIssuer
	Revoked auth.RevocationChecker
}

func NewRouter(env intconfig.Env, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Session(d.Tokens, d.Revoked),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	a := d.API
	loginLimiter := middleware.NewRateLimiter(env.LoginRatePerMinute)
	requireSession := middleware.RequireSession()

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", a.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/login", loginLimiter.Limit(), a.Login)
		authGroup.POST("/logout", requireSession, a.Logout)
		authGroup.GET("/session", requireSession, a.CurrentSession)

		// Tour catalogue
		api.GET("/tours", requireSession, a.ListTours)

		// Booking wizard
		wiz := api.Group("/wizard/sessions", requireSession)
		wiz.POST("", a.StartWizard)
		wiz.GET("/:id", a.GetWizard)
		wiz.DELETE("/:id", a.AbandonWizard)
		wiz.PUT("/:id/tour", a.SelectTour)
		wiz.PUT("/:id/date", a.SelectDate)
		wiz.PUT("/:id/time-slot", a.SelectTimeSlot)
		wiz.POST("/:id/counts", a.UpdateCount)
		wiz.PUT("/:id/customer", a.SetCustomer)
		wiz.PUT("/:id/travelers/:index", a.SetTraveler)
		wiz.POST("/:id/next", a.NextStep)
		wiz.POST("/:id/back", a.PreviousStep)
		wiz.GET("/:id/quote", a.GetQuote)
		wiz.POST("/:id/submit", a.SubmitWizard)

		// Documents and audit
		api.GET("/bookings/:id/confirmation", requireSession, a.GetBookingConfirmationPDF)
		api.GET("/submissions", requireSession, middleware.RequireRoles("admin"), a.ListSubmissions)
	}

	h.SetRouter(r)
	return r
}
