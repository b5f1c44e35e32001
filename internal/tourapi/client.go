// Package tourapi is the client of the tour backend REST API that owns plans,
// dates, time slots and bookings.
package tourapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/utils"
	"tourdesk/internal/wizard"
)

// maxPages bounds how many "next" links ListPlans follows.
const maxPages = 50

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// page is the paginated list envelope. Endpoints that are not paginated return
// a bare JSON array instead.
type page[T any] struct {
	Count   int    `json:"count"`
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

func (c *Client) ListPlans(ctx context.Context) ([]models.TourPlan, error) {
	var plans []models.TourPlan
	next := c.BaseURL + "/tour/plan/"
	for i := 0; next != "" && i < maxPages; i++ {
		items, more, err := fetchList[models.TourPlan](ctx, c, "list_plans", "tour plan", next)
		if err != nil {
			return nil, err
		}
		plans = append(plans, items...)
		next = c.resolve(more)
	}
	return plans, nil
}

// GetPlan looks a plan up in the plan list; the backend has no single-plan read.
func (c *Client) GetPlan(ctx context.Context, id int64) (models.TourPlan, error) {
	plans, err := c.ListPlans(ctx)
	if err != nil {
		return models.TourPlan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return models.TourPlan{}, domain.NotFoundError{Resource: "tour plan"}
}

func (c *Client) ListDates(ctx context.Context, tourID int64) ([]models.TourDate, error) {
	items, _, err := fetchList[models.TourDate](ctx, c, "list_dates", "tour date", fmt.Sprintf("%s/tour/plan/date/%d", c.BaseURL, tourID))
	return items, err
}

func (c *Client) ListTimeSlots(ctx context.Context, dateID int64) ([]models.TourTimeSlot, error) {
	items, _, err := fetchList[models.TourTimeSlot](ctx, c, "list_time_slots", "time slot", fmt.Sprintf("%s/tour/plan/date/time/%d", c.BaseURL, dateID))
	return items, err
}

func (c *Client) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	var b models.Booking
	err := c.do(ctx, "get_booking", "booking", http.MethodGet, fmt.Sprintf("%s/tour/booking/%d", c.BaseURL, id), nil, &b)
	return b, err
}

func (c *Client) CreateBooking(ctx context.Context, req wizard.CreateBookingRequest) (models.Booking, error) {
	var b models.Booking
	err := c.do(ctx, "create_booking", "booking", http.MethodPost, c.BaseURL+"/tour/booking/", req, &b)
	return b, err
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, req wizard.UpdateBookingRequest) (models.Booking, error) {
	var b models.Booking
	err := c.do(ctx, "update_booking", "booking", http.MethodPatch, fmt.Sprintf("%s/tour/booking/%d", c.BaseURL, id), req, &b)
	if err == nil && b.ID == 0 {
		b.ID = id
	}
	return b, err
}

func fetchList[T any](ctx context.Context, c *Client, op, resource, endpoint string) ([]T, string, error) {
	var raw json.RawMessage
	if err := c.do(ctx, op, resource, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, "", err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, "", nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", domain.UpstreamError{Op: op, Err: fmt.Errorf("decode list: %w", err)}
		}
		return items, "", nil
	}
	var p page[T]
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, "", domain.UpstreamError{Op: op, Err: fmt.Errorf("decode page: %w", err)}
	}
	if p.Results == nil {
		p.Results = []T{}
	}
	return p.Results, p.Next, nil
}

// resolve turns a "next" link into an absolute URL; relative links are taken
// against BaseURL.
func (c *Client) resolve(next string) string {
	next = strings.TrimSpace(next)
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return next
	}
	base, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// do performs one request. There are no retries; the caller decides whether to
// try again.
func (c *Client) do(ctx context.Context, op, resource, method, endpoint string, in, out any) error {
	reqID := utils.RequestIDFrom(ctx)

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return domain.InternalError{Msg: "encode request", Err: err}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return domain.UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		utils.LogEventf(reqID, "tourapi", op, "transport error: %v", err)
		return domain.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	utils.LogEventf(reqID, "tourapi", op, "status=%d latency_ms=%d", resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resource, resp.StatusCode, payload)
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return domain.UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
