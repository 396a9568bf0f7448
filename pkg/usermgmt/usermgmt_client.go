package usermgmt

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

// RequestTimeout bounds every call to the user-management service.
const RequestTimeout = 10 * time.Second

// sessionCookie is the session token name forwarded verbatim from the
// inbound request.
const sessionCookie = "voyage_at"

// PreferenceAnswerValue wraps a single answer value the way the
// user-management service expects it.
type PreferenceAnswerValue struct {
	Value any `json:"value"`
}

// PreferenceAnswer pairs an answer with its question.
type PreferenceAnswer struct {
	Answer     PreferenceAnswerValue `json:"answer"`
	QuestionID int                   `json:"question_id"`
}

// PreferencesRequest saves a named questionnaire answer set for reuse.
type PreferencesRequest struct {
	Name    string             `json:"name"`
	Answers []PreferenceAnswer `json:"answers"`
}

// TripAssociation registers the session's user as a participant of a trip.
type TripAssociation struct {
	TripID       string `json:"trip_id"`
	IsGroup      bool   `json:"is_group"`
	PreferenceID string `json:"preference_id,omitempty"`
}

// ClientInterface is the participant/preference gateway contract. Calls are
// never retried; failures surface as *models.UpstreamError.
type ClientInterface interface {
	SavePreferences(ctx context.Context, req PreferencesRequest, sessionToken string) (string, error)
	AssociateTrip(ctx context.Context, req TripAssociation, sessionToken string) error
}

// Client talks to the user-management service over HTTP.
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

// SavePreferences stores the answer set and returns its identifier. A 409
// means an identical set already exists and is treated as success.
func (c *Client) SavePreferences(ctx context.Context, req PreferencesRequest, sessionToken string) (string, error) {
	status, body, err := c.post(ctx, "/preferences", req, sessionToken)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusConflict {
		return "", &models.UpstreamError{Service: "user-management", StatusCode: status, Body: string(body)}
	}

	var out struct {
		Response struct {
			ID json.Number `json:"id"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &models.UpstreamError{Service: "user-management", StatusCode: status, Body: "malformed preferences response: " + err.Error()}
	}
	return out.Response.ID.String(), nil
}

// AssociateTrip adds the session's user as participant of the trip.
func (c *Client) AssociateTrip(ctx context.Context, req TripAssociation, sessionToken string) error {
	status, body, err := c.post(ctx, "/trips/save", req, sessionToken)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &models.UpstreamError{Service: "user-management", StatusCode: status, Body: string(body)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, sessionToken string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("usermgmt.Client: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("usermgmt.Client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if sessionToken != "" {
		httpReq.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionToken})
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, &models.UpstreamError{Service: "user-management", Body: err.Error()}
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &models.UpstreamError{Service: "user-management", StatusCode: resp.StatusCode, Body: err.Error()}
	}
	return resp.StatusCode, text, nil
}
