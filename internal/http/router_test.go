package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"tourdesk/internal/auth"
	intconfig "tourdesk/internal/config"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	h "tourdesk/internal/http/handlers"
	"tourdesk/internal/repositories"
	"tourdesk/internal/services"
	"tourdesk/internal/wizard"
)

type stubTours struct {
	created []wizard.CreateBookingRequest
}

func (s *stubTours) ListPlans(context.Context) ([]models.TourPlan, error) {
	return []models.TourPlan{
		{ID: 7, Title: "Sintra Day Trip", IsActive: true, MaxAdults: 8, PriceAdult: "45.00", MaxChildren: 4, PriceChild: "20.00"},
		{ID: 8, Title: "Douro Valley", IsActive: false, MaxAdults: 6, PriceAdult: "80.00"},
	}, nil
}

func (s *stubTours) GetPlan(ctx context.Context, id int64) (models.TourPlan, error) {
	plans, _ := s.ListPlans(ctx)
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return models.TourPlan{}, domain.NotFoundError{Resource: "tour plan"}
}

func (s *stubTours) ListDates(_ context.Context, tourID int64) ([]models.TourDate, error) {
	if tourID != 7 {
		return nil, nil
	}
	return []models.TourDate{{ID: 100, Date: "2025-06-10", TourPlan: 7}}, nil
}

func (s *stubTours) ListTimeSlots(_ context.Context, dateID int64) ([]models.TourTimeSlot, error) {
	if dateID != 100 {
		return nil, nil
	}
	return []models.TourTimeSlot{{ID: 500, TourDate: 100, StartTime: "09:00:00", EndTime: "17:00:00"}}, nil
}

func (s *stubTours) GetBooking(_ context.Context, id int64) (models.Booking, error) {
	return models.Booking{}, domain.NotFoundError{Resource: "booking"}
}

func (s *stubTours) CreateBooking(_ context.Context, req wizard.CreateBookingRequest) (models.Booking, error) {
	s.created = append(s.created, req)
	return models.Booking{ID: 901, Status: models.BookingPending}, nil
}

func (s *stubTours) UpdateBooking(_ context.Context, id int64, _ wizard.UpdateBookingRequest) (models.Booking, error) {
	return models.Booking{ID: id}, nil
}

type stubUsers struct {
	user models.AdminUser
}

func (s stubUsers) FindByLogin(_ context.Context, login string) (models.AdminUser, error) {
	if login == s.user.Username || login == s.user.Email {
		return s.user, nil
	}
	return models.AdminUser{}, domain.NotFoundError{Resource: "admin user"}
}

func (s stubUsers) Count(context.Context) (int, error) { return 1, nil }

func (s stubUsers) Create(context.Context, models.AdminUser) (int64, error) { return 0, nil }

type stubSubmissions struct {
	rows []models.Submission
}

func (s *stubSubmissions) Insert(_ context.Context, row models.Submission) (int64, error) {
	s.rows = append(s.rows, row)
	return int64(len(s.rows)), nil
}

func (s *stubSubmissions) List(_ context.Context, bookingID int64, _ domain.Pagination) ([]models.Submission, error) {
	out := []models.Submission{}
	for _, r := range s.rows {
		if bookingID == 0 || r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	return out, nil
}

type testServer struct {
	router *gin.Engine
	tours  *stubTours
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := stubUsers{user: models.AdminUser{ID: 1, Username: "ana", Email: "ana@example.com", PasswordHash: string(hash), Role: "admin", Status: "active"}}

	tours := &stubTours{}
	store := repositories.NewMemoryStore(time.Hour)
	subs := &stubSubmissions{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	a := &h.API{
		Wizard:      services.NewWizardService(tours, store, subs),
		Auth:        services.AuthService{Users: users, Tokens: tokens, Revoked: store},
		Docs:        services.DocsService{Tours: tours},
		Submissions: services.SubmissionService{Repo: subs},
	}
	env := intconfig.Env{LoginRatePerMinute: 100}
	return testServer{router: NewRouter(env, Deps{API: a, Tokens: tokens, Revoked: store}), tours: tours}
}

func (ts testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, out
}

func (ts testServer) login(t *testing.T) string {
	t.Helper()
	w, body := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "ana", "password": "s3cret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %v", body)
	}
	return token
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w, body := ts.do(t, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", w.Code, body)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	w, body := ts.do(t, http.MethodGet, "/api/nope", "", nil)
	if w.Code != http.StatusNotFound || body["path"] != "/api/nope" {
		t.Fatalf("no route = %d %v", w.Code, body)
	}
}

func TestLoginLogout(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "ana", "password": "wrong"})
	if w.Code != http.StatusUnauthorized || body["code"] != "unauthorized" {
		t.Fatalf("bad password = %d %v", w.Code, body)
	}

	token := ts.login(t)
	w, body = ts.do(t, http.MethodGet, "/api/auth/session", token, nil)
	if w.Code != http.StatusOK || body["state"] != string(auth.Authenticated) {
		t.Fatalf("session = %d %v", w.Code, body)
	}

	if w, _ = ts.do(t, http.MethodPost, "/api/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout = %d %s", w.Code, w.Body.String())
	}
	if w, _ = ts.do(t, http.MethodGet, "/api/auth/session", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token still accepted: %d", w.Code)
	}
}

func TestWizardRequiresLogin(t *testing.T) {
	ts := newTestServer(t)
	w, body := ts.do(t, http.MethodPost, "/api/wizard/sessions", "", gin.H{"flow": "create"})
	if w.Code != http.StatusUnauthorized || body["code"] != "unauthorized" {
		t.Fatalf("anonymous wizard = %d %v", w.Code, body)
	}
}

func TestListToursActiveOnly(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	w, body := ts.do(t, http.MethodGet, "/api/tours?active=1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tours = %d", w.Code)
	}
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("active tours = %v", data)
	}
}

func TestWizardOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	w, body := ts.do(t, http.MethodPost, "/api/wizard/sessions", token, gin.H{"flow": "create"})
	if w.Code != http.StatusCreated {
		t.Fatalf("start = %d %s", w.Code, w.Body.String())
	}
	id, _ := body["id"].(string)
	base := "/api/wizard/sessions/" + id

	if w, _ = ts.do(t, http.MethodPut, base+"/tour", token, gin.H{"tour_id": 7}); w.Code != http.StatusOK {
		t.Fatalf("tour = %d %s", w.Code, w.Body.String())
	}
	if w, _ = ts.do(t, http.MethodPut, base+"/date", token, gin.H{"date": "2025-06-11"}); w.Code != http.StatusConflict {
		t.Fatalf("unlisted date = %d %s", w.Code, w.Body.String())
	}
	if w, _ = ts.do(t, http.MethodPut, base+"/date", token, gin.H{"date_id": 100}); w.Code != http.StatusOK {
		t.Fatalf("date = %d %s", w.Code, w.Body.String())
	}
	if w, _ = ts.do(t, http.MethodPut, base+"/time-slot", token, gin.H{"time_slot_id": 500}); w.Code != http.StatusOK {
		t.Fatalf("slot = %d %s", w.Code, w.Body.String())
	}
	if w, _ = ts.do(t, http.MethodPost, base+"/counts", token, gin.H{"category": "pirates", "delta": 1}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad category = %d", w.Code)
	}
	if w, _ = ts.do(t, http.MethodPost, base+"/counts", token, gin.H{"category": "child", "delta": 1}); w.Code != http.StatusOK {
		t.Fatalf("counts = %d %s", w.Code, w.Body.String())
	}
	if w, body = ts.do(t, http.MethodPost, base+"/next", token, nil); w.Code != http.StatusOK || body["step"] != "customer_info" {
		t.Fatalf("next = %d %v", w.Code, body["step"])
	}

	_, _ = ts.do(t, http.MethodPut, base+"/customer", token, gin.H{"full_name": "Ana Silva", "email": "nope", "country": "PT", "phone": "900"})
	w, body = ts.do(t, http.MethodPost, base+"/next", token, nil)
	details, _ := body["details"].([]any)
	if w.Code != http.StatusBadRequest || len(details) != 1 || details[0] != "email: must be a valid email address" {
		t.Fatalf("invalid customer = %d %v", w.Code, body)
	}

	_, _ = ts.do(t, http.MethodPut, base+"/customer", token, gin.H{"full_name": "Ana Silva", "email": "ana@example.com", "country": "PT", "phone": "900"})
	if w, body = ts.do(t, http.MethodPost, base+"/next", token, nil); w.Code != http.StatusOK || body["step"] != "manifest" {
		t.Fatalf("manifest = %d %v", w.Code, body["step"])
	}
	_, _ = ts.do(t, http.MethodPut, base+"/travelers/0", token, gin.H{"name": "Ana"})
	if w, _ = ts.do(t, http.MethodPut, base+"/travelers/x", token, gin.H{"name": "Rui"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad index = %d", w.Code)
	}
	_, _ = ts.do(t, http.MethodPut, base+"/travelers/1", token, gin.H{"name": "Rui"})

	if w, body = ts.do(t, http.MethodGet, base+"/quote", token, nil); w.Code != http.StatusOK || body["total"] != "65.00" {
		t.Fatalf("quote = %d %v", w.Code, body)
	}

	w, body = ts.do(t, http.MethodPost, base+"/submit", token, nil)
	if w.Code != http.StatusCreated || len(ts.tours.created) != 1 {
		t.Fatalf("submit = %d %s", w.Code, w.Body.String())
	}
	if w, _ = ts.do(t, http.MethodGet, base, token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("session kept after submit: %d", w.Code)
	}

	w, body = ts.do(t, http.MethodGet, "/api/submissions?booking_id=901", token, nil)
	rows, _ := body["data"].([]any)
	if w.Code != http.StatusOK || len(rows) != 1 {
		t.Fatalf("submissions = %d %v", w.Code, body)
	}
}

func TestAbandonWizard(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	_, body := ts.do(t, http.MethodPost, "/api/wizard/sessions", token, gin.H{"flow": "create"})
	base := "/api/wizard/sessions/" + body["id"].(string)

	if w, _ := ts.do(t, http.MethodDelete, base, token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("abandon = %d", w.Code)
	}
	if w, _ := ts.do(t, http.MethodGet, base, token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("abandoned session still readable: %d", w.Code)
	}
}

func TestStartWizardErrors(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	if w, _ := ts.do(t, http.MethodPost, "/api/wizard/sessions", token, gin.H{"flow": "teleport"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown flow = %d", w.Code)
	}
	if w, _ := ts.do(t, http.MethodPost, "/api/wizard/sessions", token, gin.H{"flow": "edit", "booking_id": 404}); w.Code != http.StatusNotFound {
		t.Fatalf("missing booking = %d", w.Code)
	}
}

func TestConfirmationErrors(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	if w, _ := ts.do(t, http.MethodGet, "/api/bookings/abc/confirmation", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", w.Code)
	}
	if w, _ := ts.do(t, http.MethodGet, "/api/bookings/404/confirmation", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing booking = %d", w.Code)
	}
}
