package models

import "encoding/json"

// Question is one questionnaire entry forwarded to the recommendation
// service; values are scale answers today but kept opaque.
type Question struct {
	QuestionID int    `json:"question_id" validate:"required"`
	Value      any    `json:"value" validate:"required"`
	Type       string `json:"type,omitempty"`
}

// Preferences groups the questionnaire answers with an optional name under
// which they are saved for reuse.
type Preferences struct {
	Questions       []Question `json:"questions" validate:"dive"`
	PreferencesName string     `json:"preferencesName,omitempty"`
}

// TripForm is the trip creation request, shared by the REST endpoint and the
// trip-creation stream.
type TripForm struct {
	Budget          float64          `json:"budget" validate:"gte=0"`
	StartDate       string           `json:"startDate" validate:"required"`
	Duration        int              `json:"duration"` // days, clamped to >= 1
	DisplayName     string           `json:"display_name" validate:"required"`
	TripType        string           `json:"tripType" validate:"required,oneof=place road zone"`
	Country         string           `json:"country,omitempty"`
	City            string           `json:"city,omitempty"`
	Data            LocationQuery    `json:"data_type" validate:"required"`
	Preferences     Preferences      `json:"preferences"`
	MustVisitPlaces []PlaceSelection `json:"must_visit_places,omitempty"`
	Keywords        []string         `json:"keywords,omitempty"`
	IsGroup         bool             `json:"is_group"`
	// PreferenceID references an already saved preference set to reuse
	// instead of creating a new one.
	PreferenceID string `json:"preference_id,omitempty"`
	// Guest suppresses participant association even for authenticated
	// callers.
	Guest bool `json:"guest,omitempty"`
}

// SaveTripRequest commits a draft itinerary to durable storage. The
// itinerary arrives raw and is decoded exactly once by the coordinator.
type SaveTripRequest struct {
	ID           string          `json:"id" validate:"required"`
	Itinerary    json.RawMessage `json:"itinerary" validate:"required"`
	TripType     string          `json:"trip_type" validate:"required,oneof=place road zone"`
	IsGroup      bool            `json:"is_group"`
	PreferenceID string          `json:"preference_id,omitempty"`
}

// ActivityPatch targets a single activity for regeneration.
type ActivityPatch struct {
	ActivityID string `json:"activity_id" validate:"required"`
	DayIndex   int    `json:"day_index"`
	Slot       string `json:"slot,omitempty" validate:"omitempty,oneof=morning afternoon evening"`
	Query      string `json:"query,omitempty"`
}

// PreferenceAnswer is one updated questionnaire answer for a
// preference-driven regeneration.
type PreferenceAnswer struct {
	QuestionID int `json:"question_id"`
	Value      any `json:"value"`
}

// RegenerationRequest is the first message of the trip-regeneration stream.
type RegenerationRequest struct {
	PreferenceID string             `json:"preference_id"`
	Answers      []PreferenceAnswer `json:"answers"`
}

// Session is the caller's identity context. Token is the raw voyage_at
// cookie value, forwarded verbatim to the user-management service; UserID is
// the parsed subject when the token is well formed. Guest sessions skip
// participant association.
type Session struct {
	UserID string
	Token  string
	Guest  bool
}

// Authenticated reports whether participant/preference recording applies.
func (s Session) Authenticated() bool {
	return s.Token != "" && !s.Guest
}
