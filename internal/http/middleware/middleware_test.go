package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tourdesk/internal/auth"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var fromCtx string
	r.GET("/x", func(c *gin.Context) {
		fromCtx = utils.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-1")
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-1" || fromCtx != "abc-1" {
		t.Fatalf("header=%q ctx=%q", w.Header().Get("X-Request-ID"), fromCtx)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id not generated")
	}
}

func TestRequireSession(t *testing.T) {
	issuer := auth.NewTokenIssuer("k", time.Hour)
	token, _, _ := issuer.Issue(models.AdminUser{ID: 1, Username: "ana"})

	r := gin.New()
	r.Use(RequestID(), Session(issuer, nil))
	r.GET("/private", RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, GetSession(c).Username())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ana" {
		t.Fatalf("authenticated: %d %s", w.Code, w.Body.String())
	}
}

type failingRevocations struct{}

func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestSessionStoreOutageIsUnavailable(t *testing.T) {
	issuer := auth.NewTokenIssuer("k", time.Hour)
	token, _, _ := issuer.Issue(models.AdminUser{ID: 1, Username: "ana"})

	r := gin.New()
	r.Use(RequestID(), Session(issuer, failingRevocations{}))
	r.GET("/private", RequireSession(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	// anonymous requests never reach the store
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	issuer := auth.NewTokenIssuer("k", time.Hour)
	admin, _, _ := issuer.Issue(models.AdminUser{ID: 1, Username: "ana", Role: "Admin"})
	staff, _, _ := issuer.Issue(models.AdminUser{ID: 2, Username: "rui", Role: "staff"})

	r := gin.New()
	r.Use(Session(issuer, nil))
	r.GET("/audit", RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]int{"": http.StatusUnauthorized, admin: http.StatusOK, staff: http.StatusForbidden}
	for token, want := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/audit", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("status = %d, want %d", w.Code, want)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("other client limited: %d", w.Code)
	}
}

func TestRateLimiterSweepsIdleVisitorsPeriodically(t *testing.T) {
	rl := NewRateLimiter(5)
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	rl.getLimiter("10.0.0.1", t0)
	rl.getLimiter("10.0.0.2", t0.Add(10*time.Minute))
	// idle long enough, but the last sweep was only 30s ago
	rl.getLimiter("10.0.0.3", t0.Add(10*time.Minute+30*time.Second))
	if _, ok := rl.visitors["10.0.0.1"]; !ok {
		t.Fatalf("visitor swept before the sweep interval elapsed")
	}

	rl.getLimiter("10.0.0.3", t0.Add(11*time.Minute+time.Second))
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Fatalf("idle visitor kept after sweep")
	}
	if len(rl.visitors) != 2 {
		t.Fatalf("visitors = %d, want 2", len(rl.visitors))
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://admin.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://admin.example.com" {
		t.Fatalf("allowed origin missing: %v", w.Header())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin allowed")
	}
}
