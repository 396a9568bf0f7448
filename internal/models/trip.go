package models

import (
	"encoding/json"
	"fmt"
)

// Trip category tags. The tag selects the itinerary variant and the shape of
// the original-query snapshot, and never changes over a trip's lifetime.
const (
	TripTypePlace = "place"
	TripTypeRoad  = "road"
	TripTypeZone  = "zone"
)

// LatLong is a WGS84 coordinate pair.
type LatLong struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// PlaceInfo describes a place as returned by the recommendation service.
// The identifier may arrive as either "id" or the legacy "place_id" field;
// both resolve to ID on decode. Unknown fields are ignored.
type PlaceInfo struct {
	ID                   string         `json:"id,omitempty" bson:"id,omitempty"`
	Name                 string         `json:"name" bson:"name"`
	Location             *LatLong       `json:"location,omitempty" bson:"location,omitempty"`
	Types                []string       `json:"types,omitempty" bson:"types,omitempty"`
	Photos               []string       `json:"photos,omitempty" bson:"photos,omitempty"`
	AccessibilityOptions map[string]any `json:"accessibility_options,omitempty" bson:"accessibility_options,omitempty"`
	OpeningHours         map[string]any `json:"opening_hours,omitempty" bson:"opening_hours,omitempty"`
	PriceRange           string         `json:"price_range,omitempty" bson:"price_range,omitempty"`
	Rating               *float64       `json:"rating,omitempty" bson:"rating,omitempty"`
	UserRatingsTotal     *int           `json:"user_ratings_total,omitempty" bson:"user_ratings_total,omitempty"`
	PhoneNumber          string         `json:"international_phone_number,omitempty" bson:"international_phone_number,omitempty"`
	AllowsDogs           *bool          `json:"allows_dogs,omitempty" bson:"allows_dogs,omitempty"`
	GoodForChildren      *bool          `json:"good_for_children,omitempty" bson:"good_for_children,omitempty"`
	GoodForGroups        *bool          `json:"good_for_groups,omitempty" bson:"good_for_groups,omitempty"`
}

// UnmarshalJSON resolves the "place_id" alias onto the canonical ID field.
func (p *PlaceInfo) UnmarshalJSON(b []byte) error {
	type placeInfo PlaceInfo
	aux := struct {
		*placeInfo
		AltID string `json:"place_id"`
	}{placeInfo: (*placeInfo)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

// Activity is one scheduled entry in a day's time-of-day bucket.
type Activity struct {
	ID           string    `json:"id" bson:"id"`
	Place        PlaceInfo `json:"place" bson:"place"`
	StartTime    string    `json:"start_time" bson:"start_time"`
	EndTime      string    `json:"end_time" bson:"end_time"`
	ActivityType string    `json:"activity_type" bson:"activity_type"`
	Duration     int       `json:"duration" bson:"duration"` // minutes
}

// RouteLeg is an encoded route segment between two activities or stops.
type RouteLeg struct {
	PolylineEncoded string `json:"polylineEncoded" bson:"polylineEncoded"`
	Duration        int    `json:"duration" bson:"duration"`
	Distance        int    `json:"distance" bson:"distance"`
}

// Day holds the activity buckets of one itinerary day. Evening activities are
// tolerated on the wire for older trips even though generated itineraries
// only fill morning and afternoon.
type Day struct {
	Date                string     `json:"date" bson:"date"`
	MorningActivities   []Activity `json:"morning_activities" bson:"morning_activities"`
	AfternoonActivities []Activity `json:"afternoon_activities" bson:"afternoon_activities"`
	EveningActivities   []Activity `json:"evening_activities,omitempty" bson:"evening_activities,omitempty"`
	Routes              []RouteLeg `json:"routes,omitempty" bson:"routes,omitempty"`
}

// TripMeta is the metadata every itinerary variant carries and that must
// survive regeneration and partial updates.
type TripMeta struct {
	TripType string `json:"trip_type" bson:"trip_type"`
	Country  string `json:"country,omitempty" bson:"country,omitempty"`
	City     string `json:"city,omitempty" bson:"city,omitempty"`
	IsGroup  bool   `json:"is_group" bson:"is_group"`
}

// StoredCoordinates are the per-category coordinate fields recorded at
// creation time as a regeneration fallback when the snapshot is missing.
type StoredCoordinates struct {
	Center      *LatLong `json:"center_coordinates,omitempty" bson:"center_coordinates,omitempty"`
	Radius      int      `json:"radius,omitempty" bson:"radius,omitempty"`
	Place       *LatLong `json:"place_coordinates,omitempty" bson:"place_coordinates,omitempty"`
	Origin      *LatLong `json:"origin_coordinates,omitempty" bson:"origin_coordinates,omitempty"`
	Destination *LatLong `json:"destination_coordinates,omitempty" bson:"destination_coordinates,omitempty"`
}

// Empty reports whether no coordinate field is set.
func (sc StoredCoordinates) Empty() bool {
	return sc.Center == nil && sc.Place == nil && sc.Origin == nil && sc.Destination == nil
}

// ActivityLocation is a coordinate recovered from an itinerary's activities,
// the third reconstruction tier.
type ActivityLocation struct {
	Coordinates LatLong
	PlaceName   string
	PlaceID     string
}

// RegenSeed carries the request fields a regeneration reuses from the stored
// itinerary. Zero values are filled with documented defaults by the caller.
type RegenSeed struct {
	StartDate string
	EndDate   string
	Name      string
	Budget    float64
	MustVisit []PlaceSelection
	Keywords  []string
}

// Itinerary is the closed union over the two itinerary variants. Concrete
// types are *StandardItinerary (place and zone trips) and *RoadItinerary.
type Itinerary interface {
	Type() string
	Meta() TripMeta
	SetMeta(TripMeta)
	Snapshot() *LocationQuery
	SetSnapshot(*LocationQuery)
	Coordinates() StoredCoordinates
	SetCoordinates(StoredCoordinates)
	// FirstActivityLocation returns the first activity coordinate usable for
	// reconstruction, or nil when none of the itinerary's places carries one.
	FirstActivityLocation() *ActivityLocation
	Seed() RegenSeed
}

// StandardItinerary is the day-structured variant produced for place and
// zone trips.
type StandardItinerary struct {
	StartDate string `json:"start_date" bson:"start_date"`
	EndDate   string `json:"end_date" bson:"end_date"`
	Name      string `json:"name" bson:"name"`
	Days      []Day  `json:"days" bson:"days"`
	TripMeta  `bson:",inline"`

	// Regeneration seed fields, present when the trip was created through
	// this service rather than imported.
	Budget          float64          `json:"budget,omitempty" bson:"budget,omitempty"`
	MustVisitPlaces []PlaceSelection `json:"must_visit_places,omitempty" bson:"must_visit_places,omitempty"`
	Keywords        []string         `json:"keywords,omitempty" bson:"keywords,omitempty"`

	OriginalPlaceData *LocationQuery `json:"original_place_data,omitempty" bson:"original_place_data,omitempty"`
	StoredCoordinates `bson:",inline"`
}

func (s *StandardItinerary) Type() string { return s.TripType }

func (s *StandardItinerary) Meta() TripMeta { return s.TripMeta }

func (s *StandardItinerary) SetMeta(m TripMeta) { s.TripMeta = m }

func (s *StandardItinerary) Snapshot() *LocationQuery { return s.OriginalPlaceData }

func (s *StandardItinerary) SetSnapshot(q *LocationQuery) { s.OriginalPlaceData = q }

func (s *StandardItinerary) Coordinates() StoredCoordinates { return s.StoredCoordinates }

func (s *StandardItinerary) SetCoordinates(sc StoredCoordinates) { s.StoredCoordinates = sc }

func (s *StandardItinerary) FirstActivityLocation() *ActivityLocation {
	for _, day := range s.Days {
		for _, bucket := range [][]Activity{day.MorningActivities, day.AfternoonActivities, day.EveningActivities} {
			for _, act := range bucket {
				if loc := usableLocation(act.Place); loc != nil {
					return loc
				}
			}
		}
	}
	return nil
}

func (s *StandardItinerary) Seed() RegenSeed {
	return RegenSeed{
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Name:      s.Name,
		Budget:    s.Budget,
		MustVisit: s.MustVisitPlaces,
		Keywords:  s.Keywords,
	}
}

// Stop is one ordered stop of a road itinerary.
type Stop struct {
	ID    string    `json:"id" bson:"id"`
	Place PlaceInfo `json:"place" bson:"place"`
	Index int       `json:"index" bson:"index"`
}

// RoadItinerary is the stop-structured variant produced for road trips.
type RoadItinerary struct {
	Name        string      `json:"name" bson:"name"`
	Stops       []Stop      `json:"stops" bson:"stops"`
	Routes      []RouteLeg  `json:"routes" bson:"routes"`
	Suggestions []PlaceInfo `json:"suggestions" bson:"suggestions"`
	TripMeta    `bson:",inline"`

	OriginalPlaceData *LocationQuery `json:"original_place_data,omitempty" bson:"original_place_data,omitempty"`
	StoredCoordinates `bson:",inline"`
}

func (r *RoadItinerary) Type() string { return r.TripType }

func (r *RoadItinerary) Meta() TripMeta { return r.TripMeta }

func (r *RoadItinerary) SetMeta(m TripMeta) { r.TripMeta = m }

func (r *RoadItinerary) Snapshot() *LocationQuery { return r.OriginalPlaceData }

func (r *RoadItinerary) SetSnapshot(q *LocationQuery) { r.OriginalPlaceData = q }

func (r *RoadItinerary) Coordinates() StoredCoordinates { return r.StoredCoordinates }

func (r *RoadItinerary) SetCoordinates(sc StoredCoordinates) { r.StoredCoordinates = sc }

func (r *RoadItinerary) FirstActivityLocation() *ActivityLocation {
	for _, stop := range r.Stops {
		if loc := usableLocation(stop.Place); loc != nil {
			return loc
		}
	}
	for _, place := range r.Suggestions {
		if loc := usableLocation(place); loc != nil {
			return loc
		}
	}
	return nil
}

// Seed returns a zero-date seed; road itineraries do not persist their date
// range or budget, so the coordinator applies defaults.
func (r *RoadItinerary) Seed() RegenSeed {
	return RegenSeed{Name: r.Name}
}

// usableLocation filters out absent and zero-valued coordinates, which some
// upstream payloads use as "unknown".
func usableLocation(p PlaceInfo) *ActivityLocation {
	if p.Location == nil || p.Location.Latitude == 0 || p.Location.Longitude == 0 {
		return nil
	}
	return &ActivityLocation{Coordinates: *p.Location, PlaceName: p.Name, PlaceID: p.ID}
}

// DecodeItinerary parses a serialized itinerary into its variant, keyed by
// the embedded trip_type tag. Untagged payloads default to the standard
// variant, matching what older stored trips look like. This is the single
// decode point per operation; callers must not re-parse the result.
func DecodeItinerary(raw []byte) (Itinerary, error) {
	var probe struct {
		TripType string `json:"trip_type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("models.DecodeItinerary: %w", err)
	}
	tripType := probe.TripType
	if tripType == "" {
		tripType = TripTypePlace
	}

	if tripType == TripTypeRoad {
		var road RoadItinerary
		if err := json.Unmarshal(raw, &road); err != nil {
			return nil, fmt.Errorf("models.DecodeItinerary: road variant: %w", err)
		}
		road.TripType = tripType
		return &road, nil
	}

	var std StandardItinerary
	if err := json.Unmarshal(raw, &std); err != nil {
		return nil, fmt.Errorf("models.DecodeItinerary: standard variant: %w", err)
	}
	std.TripType = tripType
	return &std, nil
}

// EncodeItinerary is the inverse of DecodeItinerary.
func EncodeItinerary(it Itinerary) ([]byte, error) {
	b, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("models.EncodeItinerary: %w", err)
	}
	return b, nil
}

// StoredTrip pairs a durable trip with its identifier for listings.
type StoredTrip struct {
	TripID    string    `json:"tripId"`
	Itinerary Itinerary `json:"itinerary"`
}

// TripResult is what creation and regeneration hand back to the caller.
type TripResult struct {
	TripID       string    `json:"tripId"`
	Itinerary    Itinerary `json:"itinerary"`
	PreferenceID string    `json:"preference_id,omitempty"`
}
