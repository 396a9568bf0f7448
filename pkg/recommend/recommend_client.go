package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voyage-trips/internal/models"

	"github.com/google/uuid"
)

// Per-call deadlines. Initial generation answers within 40s; regeneration
// reworks an existing itinerary and is allowed up to 120s.
const (
	GenerateTimeout   = 40 * time.Second
	RegenerateTimeout = 120 * time.Second
)

// QuestionAnswer is one questionnaire entry in the generation request.
type QuestionAnswer struct {
	QuestionID int    `json:"question_id"`
	Value      any    `json:"value"`
	Type       string `json:"type"`
}

// TripRequest is the generation request body. The same shape serves initial
// creation and preference-driven regeneration.
type TripRequest struct {
	TripID          string                  `json:"trip_id"`
	Questionnaire   []QuestionAnswer        `json:"questionnaire"`
	StartDate       string                  `json:"start_date"`
	EndDate         string                  `json:"end_date"`
	Budget          float64                 `json:"budget"`
	Name            string                  `json:"name"`
	MustVisitPlaces []models.PlaceSelection `json:"must_visit_places"`
	Keywords        []string                `json:"keywords"`
	Country         string                  `json:"country,omitempty"`
	City            string                  `json:"city,omitempty"`
	IsGroup         bool                    `json:"is_group"`
	Data            models.LocationQuery    `json:"data"`
	TripType        string                  `json:"tripType"`
}

// ActivityRequest asks for a single activity of an existing itinerary to be
// replaced.
type ActivityRequest struct {
	TripID    string               `json:"trip_id"`
	TripType  string               `json:"tripType"`
	Itinerary json.RawMessage      `json:"itinerary"`
	Activity  models.ActivityPatch `json:"activity"`
}

// ActivityRemoval asks for a single activity to be dropped, letting the
// service rebalance the surrounding schedule and routes.
type ActivityRemoval struct {
	TripID     string          `json:"trip_id"`
	TripType   string          `json:"tripType"`
	Itinerary  json.RawMessage `json:"itinerary"`
	ActivityID string          `json:"activity_id"`
}

// ClientInterface is the recommendation gateway contract the coordinator
// depends on. Every call carries a hard timeout and is never retried; a
// non-2xx response or timeout surfaces as *models.UpstreamError.
type ClientInterface interface {
	GenerateTrip(ctx context.Context, req TripRequest) (json.RawMessage, error)
	RegenerateTrip(ctx context.Context, req TripRequest) (json.RawMessage, error)
	RegenerateActivity(ctx context.Context, req ActivityRequest) (json.RawMessage, error)
	RemoveActivity(ctx context.Context, req ActivityRemoval) (json.RawMessage, error)
}

// Client talks to the recommendation service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// GenerateTrip produces a fresh itinerary for the query.
func (c *Client) GenerateTrip(ctx context.Context, req TripRequest) (json.RawMessage, error) {
	return c.postForItinerary(ctx, "/trip", req, GenerateTimeout)
}

// RegenerateTrip re-asks the same query with updated preference answers.
func (c *Client) RegenerateTrip(ctx context.Context, req TripRequest) (json.RawMessage, error) {
	return c.postForItinerary(ctx, "/trip", req, RegenerateTimeout)
}

// RegenerateActivity replaces one activity within an existing itinerary.
func (c *Client) RegenerateActivity(ctx context.Context, req ActivityRequest) (json.RawMessage, error) {
	return c.postForItinerary(ctx, "/trip/activity/regenerate", req, RegenerateTimeout)
}

// RemoveActivity drops one activity from an existing itinerary.
func (c *Client) RemoveActivity(ctx context.Context, req ActivityRemoval) (json.RawMessage, error) {
	return c.postForItinerary(ctx, "/trip/activity/delete", req, GenerateTimeout)
}

// postForItinerary performs one POST and unwraps the {"itinerary": ...}
// envelope the service answers with.
func (c *Client) postForItinerary(ctx context.Context, path string, body any, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("recommend.Client: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("recommend.Client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &models.UpstreamError{Service: "recommendations", Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return nil, &models.UpstreamError{Service: "recommendations", StatusCode: resp.StatusCode, Body: string(text)}
	}

	var out struct {
		Itinerary json.RawMessage `json:"itinerary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &models.UpstreamError{Service: "recommendations", StatusCode: resp.StatusCode, Body: "malformed itinerary response: " + err.Error()}
	}
	if len(out.Itinerary) == 0 {
		return nil, &models.UpstreamError{Service: "recommendations", StatusCode: resp.StatusCode, Body: "response carried no itinerary"}
	}
	return out.Itinerary, nil
}
